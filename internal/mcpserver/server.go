// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the mdpad editing session to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mdpad/internal/editor"
	"github.com/starford/mdpad/internal/export"
	"github.com/starford/mdpad/internal/noteservice"
)

const toolbarURI = "mdpad://markdown-toolbar"

// Server wraps the MCP server with mdpad tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *noteservice.Service
	files export.Saver
}

// New creates a new MCP server with all mdpad tools registered. files backs
// the save_export tool; it is not registered when files is nil.
func New(svc *noteservice.Service, files export.Saver, version string) *Server {
	s := &Server{svc: svc, files: files}

	s.mcp = server.NewMCPServer(
		"mdpad",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the editing session: selected note index (-1 for none), draft text, "+
			"editing and preview flags, and the note list with titles."),
	), s.getSession)

	s.mcp.AddTool(mcp.NewTool("change_text",
		mcp.WithDescription("Replace the draft as if typed. This detaches the draft from any selected note."),
		mcp.WithString("text", mcp.Required(), mcp.Description("New draft text")),
	), s.changeText)

	s.mcp.AddTool(mcp.NewTool("select_note",
		mcp.WithDescription("Load the note at index into the draft and leave preview mode. "+
			"An index that names no note is ignored."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based note index")),
	), s.selectNote)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Save the draft as a new note at the end of the list. A blank draft is not added."),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete the note at index. Later notes shift down by one; the draft and selection are cleared."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based note index")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("toggle_preview",
		mcp.WithDescription("Switch between the editor and the rendered preview."),
	), s.togglePreview)

	s.mcp.AddTool(mcp.NewTool("insert_markup",
		mcp.WithDescription("Splice markup into text at [start, end) and make the result the draft. Returns the new caret."),
		mcp.WithString("markup", mcp.Required(), mcp.Description("Markup to insert")),
		mcp.WithString("text", mcp.Description("Text before insertion (defaults to empty)")),
		mcp.WithNumber("start", mcp.Description("Selection start, in UTF-16 code units")),
		mcp.WithNumber("end", mcp.Description("Selection end, in UTF-16 code units")),
	), s.insertMarkup)

	names := make([]string, 0, len(editor.Formats()))
	for _, f := range editor.Formats() {
		names = append(names, string(f))
	}
	s.mcp.AddTool(mcp.NewTool("insert_format",
		mcp.WithDescription("Insert a toolbar format at [start, end). See the "+toolbarURI+" resource."),
		mcp.WithString("format", mcp.Required(), mcp.Enum(names...), mcp.Description("Toolbar format")),
		mcp.WithString("text", mcp.Description("Text before insertion (defaults to empty)")),
		mcp.WithNumber("start", mcp.Description("Selection start, in UTF-16 code units")),
		mcp.WithNumber("end", mcp.Description("Selection end, in UTF-16 code units")),
	), s.insertFormat)

	s.mcp.AddTool(mcp.NewTool("render_preview",
		mcp.WithDescription("Render the draft to HTML. Only available while preview mode is on and a note is selected."),
	), s.renderPreview)

	s.mcp.AddTool(mcp.NewTool("export_notes",
		mcp.WithDescription("Return every note joined into one markdown document."),
	), s.exportNotes)

	if files != nil {
		s.mcp.AddTool(mcp.NewTool("save_export",
			mcp.WithDescription("Save every note as one markdown file in the export directory."),
		), s.saveExport)
	}

	s.mcp.AddResource(
		mcp.NewResource(toolbarURI, "Markdown Toolbar",
			mcp.WithResourceDescription("Toolbar formats accepted by insert_format and the markup each inserts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readToolbarResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func cursorArgs(req mcp.CallToolRequest) editor.Cursor {
	return editor.Cursor{
		Text:  req.GetString("text", ""),
		Start: req.GetInt("start", 0),
		End:   req.GetInt("end", 0),
	}
}

func (s *Server) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) changeText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.ChangeText(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) selectNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.SelectNote(ctx, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.AddNote(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Added {
		return mcp.NewToolResultError("draft is blank; nothing added"), nil
	}
	return jsonResult(res)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.DeleteNote(ctx, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) togglePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.TogglePreview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) insertMarkup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markup, err := req.RequireString("markup")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.InsertMarkup(ctx, markup, cursorArgs(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) insertFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.InsertFormat(ctx, editor.Format(name), cursorArgs(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) renderPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.svc.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !p.Shown {
		return mcp.NewToolResultError("preview is not shown: select a note and toggle preview first"), nil
	}
	return mcp.NewToolResultText(p.HTML), nil
}

func (s *Server) exportNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.ExportContent(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) saveExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Export(ctx, s.files)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (%d notes, %d bytes)", res.Filename, res.Notes, res.Bytes)), nil
}

func (s *Server) readToolbarResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      toolbarURI,
			MIMEType: "text/markdown",
			Text:     ToolbarGuide(),
		},
	}, nil
}
