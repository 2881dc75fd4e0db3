package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mdpad/internal/models"
	"github.com/starford/mdpad/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir, fs := testutil.ExportDir(t)
	return New(testutil.Service(t), fs, "test"), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so dispatch to the
	// handlers directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_session":    srv.getSession,
		"change_text":    srv.changeText,
		"select_note":    srv.selectNote,
		"add_note":       srv.addNote,
		"delete_note":    srv.deleteNote,
		"toggle_preview": srv.togglePreview,
		"insert_markup":  srv.insertMarkup,
		"insert_format":  srv.insertFormat,
		"render_preview": srv.renderPreview,
		"export_notes":   srv.exportNotes,
		"save_export":    srv.saveExport,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func addNote(t *testing.T, srv *Server, text string) {
	t.Helper()
	callTool(t, srv, "change_text", map[string]any{"text": text})
	if r := callTool(t, srv, "add_note", nil); r.IsError {
		t.Fatalf("add_note: %s", resultText(r))
	}
}

func TestChangeTextAndAdd(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "change_text", map[string]any{"text": "# Groceries\n- milk"})
	var snap models.Session
	if err := json.Unmarshal([]byte(resultText(r)), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Editing || snap.Selection != -1 {
		t.Errorf("after typing = %+v", snap)
	}

	r = callTool(t, srv, "add_note", nil)
	var res models.AddResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if !res.Added || res.Index != 0 {
		t.Fatalf("add = %+v", res)
	}
	if res.Session.Notes[0].Title != "Groceries" {
		t.Errorf("title = %q", res.Session.Notes[0].Title)
	}
}

func TestAddBlankNoteIsError(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "change_text", map[string]any{"text": "   "})
	if r := callTool(t, srv, "add_note", nil); !r.IsError {
		t.Error("expected error for blank draft")
	}
}

func TestSelectAndDelete(t *testing.T) {
	srv, _ := testServer(t)
	addNote(t, srv, "a")
	addNote(t, srv, "b")

	r := callTool(t, srv, "select_note", map[string]any{"index": float64(1)})
	var snap models.Session
	_ = json.Unmarshal([]byte(resultText(r)), &snap)
	if snap.Selection != 1 || snap.Draft != "b" {
		t.Errorf("select = %+v", snap)
	}

	r = callTool(t, srv, "delete_note", map[string]any{"index": float64(0)})
	_ = json.Unmarshal([]byte(resultText(r)), &snap)
	if snap.Selection != -1 || len(snap.Notes) != 1 {
		t.Errorf("delete = %+v", snap)
	}

	if r := callTool(t, srv, "select_note", map[string]any{}); !r.IsError {
		t.Error("expected error for missing index")
	}
}

func TestInsertFormat(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "insert_format", map[string]any{
		"format": "italic",
		"text":   "ab",
		"start":  float64(1),
		"end":    float64(1),
	})
	var res models.InsertResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Session.Draft != "a*b" || res.Caret != 2 {
		t.Errorf("insert = %+v", res)
	}

	r = callTool(t, srv, "insert_format", map[string]any{"format": "blink"})
	if !r.IsError {
		t.Error("expected error for unknown format")
	}
}

func TestInsertFormatAfterEmoji(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "insert_format", map[string]any{
		"format": "code",
		"text":   "🎉x",
		"start":  float64(2),
		"end":    float64(2),
	})
	var res models.InsertResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Session.Draft != "🎉`x" || res.Caret != 3 {
		t.Errorf("insert = %+v", res)
	}
}

func TestInsertMarkupDefaultsToEmptyText(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "insert_markup", map[string]any{"markup": "## "})
	var res models.InsertResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Session.Draft != "## " || res.Caret != 3 {
		t.Errorf("insert = %+v", res)
	}
}

func TestRenderPreview(t *testing.T) {
	srv, _ := testServer(t)

	if r := callTool(t, srv, "render_preview", nil); !r.IsError {
		t.Error("expected error while preview is hidden")
	}

	addNote(t, srv, "*hi*")
	callTool(t, srv, "select_note", map[string]any{"index": 0})
	callTool(t, srv, "toggle_preview", nil)

	r := callTool(t, srv, "render_preview", nil)
	if r.IsError {
		t.Fatalf("render_preview: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "<em>hi</em>") {
		t.Errorf("html = %q", resultText(r))
	}
}

func TestExport(t *testing.T) {
	srv, dir := testServer(t)

	if r := callTool(t, srv, "export_notes", nil); !r.IsError {
		t.Error("expected error for empty export")
	}

	addNote(t, srv, "one")
	addNote(t, srv, "two")

	r := callTool(t, srv, "export_notes", nil)
	if got := resultText(r); got != "one\n\ntwo" {
		t.Errorf("export = %q", got)
	}

	r = callTool(t, srv, "save_export", nil)
	if r.IsError {
		t.Fatalf("save_export: %s", resultText(r))
	}
	data, err := os.ReadFile(filepath.Join(dir, "notes.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\n\ntwo" {
		t.Errorf("file = %q", data)
	}
}

func TestToolbarResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readToolbarResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	for _, want := range []string{"| `bold` | `**` |", "| `ordered` | `1. \\n` |", "| `code` | `` ` `` |", "UTF-16"} {
		if !strings.Contains(text, want) {
			t.Errorf("toolbar guide missing %q", want)
		}
	}
}
