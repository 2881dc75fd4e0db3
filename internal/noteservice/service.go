// Package noteservice runs the editing session on a single goroutine so that
// requests arriving concurrently from HTTP or MCP clients are applied one at a
// time, in arrival order.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/starford/mdpad/internal/apperr"
	"github.com/starford/mdpad/internal/checksum"
	"github.com/starford/mdpad/internal/editor"
	"github.com/starford/mdpad/internal/export"
	"github.com/starford/mdpad/internal/models"
	"github.com/starford/mdpad/internal/notes"
	"github.com/starford/mdpad/internal/parser"
)

// Event kinds passed to the EventFunc.
const (
	EventDraftChanged   = "draft.changed"
	EventNoteSelected   = "note.selected"
	EventNoteAdded      = "note.added"
	EventNoteDeleted    = "note.deleted"
	EventPreviewToggled = "preview.toggled"
	EventNotesExported  = "notes.exported"
)

// EventFunc is called on the session goroutine after each state change.
// It must not block.
type EventFunc func(kind string, data map[string]any)

type request struct {
	name string
	fn   func(*editor.Session)
	done chan struct{}
}

// Service owns a note store and its editing session.
//
// Concurrency model: one goroutine owns the session. Public methods send it a
// closure and wait until the closure has run, so there is no locking and no
// reordering of events.
type Service struct {
	renderer editor.Renderer
	filename string
	onEvent  EventFunc
	logger   *slog.Logger

	reqCh   chan request
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithExportFilename sets the file name exports are saved under.
func WithExportFilename(name string) Option {
	return func(s *Service) {
		s.filename = name
	}
}

// WithEventFunc registers a change listener.
func WithEventFunc(fn EventFunc) Option {
	return func(s *Service) {
		s.onEvent = fn
	}
}

// WithLogger sets the logger used for event tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New starts the session goroutine for store. Call Close to stop it.
func New(store *notes.Store, renderer editor.Renderer, opts ...Option) *Service {
	s := &Service{
		renderer: renderer,
		filename: export.DefaultFilename,
		logger:   slog.Default(),
		reqCh:    make(chan request),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run(editor.NewSession(store))
	return s
}

func (s *Service) run(sess *editor.Session) {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.reqCh:
			s.logger.Debug("session: event", slog.String("event", req.name))
			req.fn(sess)
			close(req.done)
		}
	}
}

// Close stops the session goroutine. Later calls return apperr.ErrClosed.
func (s *Service) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// do runs fn on the session goroutine. Once the request is accepted it runs to
// completion even if ctx is cancelled meanwhile.
func (s *Service) do(ctx context.Context, name string, fn func(*editor.Session)) error {
	if s.closed.Load() {
		return apperr.ErrClosed
	}
	req := request{name: name, fn: fn, done: make(chan struct{})}
	select {
	case s.reqCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return apperr.ErrClosed
	}
	<-req.done
	return nil
}

func (s *Service) emit(kind string, data map[string]any) {
	if s.onEvent != nil {
		s.onEvent(kind, data)
	}
}

// Snapshot returns the current session and note list.
func (s *Service) Snapshot(ctx context.Context) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "snapshot", func(sess *editor.Session) {
		out = snapshot(sess)
	})
	return out, err
}

// ChangeText replaces the draft as if the user typed it.
func (s *Service) ChangeText(ctx context.Context, text string) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "text_changed", func(sess *editor.Session) {
		sess.TextChanged(text)
		out = snapshot(sess)
		s.emit(EventDraftChanged, map[string]any{"selection": out.Selection})
	})
	return out, err
}

// SelectNote loads a note into the draft.
func (s *Service) SelectNote(ctx context.Context, index int) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "note_selected", func(sess *editor.Session) {
		sess.SelectNote(index)
		out = snapshot(sess)
		s.emit(EventNoteSelected, map[string]any{"selection": out.Selection})
	})
	return out, err
}

// AddNote saves the draft as a new note. A blank draft is not an error:
// the result reports Added == false and nothing changes.
func (s *Service) AddNote(ctx context.Context) (models.AddResult, error) {
	var out models.AddResult
	err := s.do(ctx, "add_note", func(sess *editor.Session) {
		idx, ok := sess.AddNote()
		out = models.AddResult{Added: ok, Index: idx, Session: snapshot(sess)}
		if ok {
			s.emit(EventNoteAdded, map[string]any{"index": idx, "count": len(out.Session.Notes)})
		}
	})
	return out, err
}

// DeleteNote removes a note and clears the editing context.
func (s *Service) DeleteNote(ctx context.Context, index int) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "delete_note", func(sess *editor.Session) {
		sess.DeleteNote(index)
		out = snapshot(sess)
		s.emit(EventNoteDeleted, map[string]any{"index": index, "count": len(out.Notes)})
	})
	return out, err
}

// TogglePreview flips preview mode.
func (s *Service) TogglePreview(ctx context.Context) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "toggle_preview", func(sess *editor.Session) {
		sess.TogglePreview()
		out = snapshot(sess)
		s.emit(EventPreviewToggled, map[string]any{"preview": out.Preview})
	})
	return out, err
}

// InsertMarkup splices raw markup at the cursor.
func (s *Service) InsertMarkup(ctx context.Context, markup string, c editor.Cursor) (models.InsertResult, error) {
	var out models.InsertResult
	err := s.do(ctx, "insert_markup", func(sess *editor.Session) {
		caret := sess.InsertMarkup(markup, c)
		out = models.InsertResult{Caret: caret, Session: snapshot(sess)}
		s.emit(EventDraftChanged, map[string]any{"selection": editor.NoSelection})
	})
	return out, err
}

// InsertFormat splices a toolbar format at the cursor.
func (s *Service) InsertFormat(ctx context.Context, f editor.Format, c editor.Cursor) (models.InsertResult, error) {
	if _, err := editor.ParseFormat(string(f)); err != nil {
		return models.InsertResult{}, err
	}
	var (
		out    models.InsertResult
		insErr error
	)
	err := s.do(ctx, "insert_format", func(sess *editor.Session) {
		caret, err := sess.InsertFormat(f, c)
		if err != nil {
			insErr = err
			return
		}
		out = models.InsertResult{Caret: caret, Session: snapshot(sess)}
		s.emit(EventDraftChanged, map[string]any{"selection": editor.NoSelection})
	})
	if err != nil {
		return models.InsertResult{}, err
	}
	return out, insErr
}

// InsertList inserts an ordered or unordered list marker at the cursor.
func (s *Service) InsertList(ctx context.Context, kind editor.ListKind, c editor.Cursor) (models.InsertResult, error) {
	var out models.InsertResult
	err := s.do(ctx, "insert_list", func(sess *editor.Session) {
		caret := sess.InsertList(kind, c)
		out = models.InsertResult{Caret: caret, Session: snapshot(sess)}
		s.emit(EventDraftChanged, map[string]any{"selection": editor.NoSelection})
	})
	return out, err
}

// Preview renders the draft when the preview pane is shown.
func (s *Service) Preview(ctx context.Context) (models.PreviewResult, error) {
	var (
		out       models.PreviewResult
		renderErr error
	)
	err := s.do(ctx, "preview", func(sess *editor.Session) {
		html, shown, err := sess.Preview(s.renderer)
		if err != nil {
			renderErr = err
			return
		}
		out = models.PreviewResult{Shown: shown, HTML: html}
	})
	if err != nil {
		return models.PreviewResult{}, err
	}
	return out, renderErr
}

// ExportContent builds the export document from the current notes.
func (s *Service) ExportContent(ctx context.Context) (export.Document, error) {
	var all []string
	if err := s.do(ctx, "export_document", func(sess *editor.Session) {
		all = sess.Store().All()
	}); err != nil {
		return export.Document{}, err
	}
	if len(all) == 0 {
		return export.Document{}, apperr.ErrNothingToExport
	}
	return export.Build(all, s.filename), nil
}

// Export saves the current notes through saver. The notes are read on the
// session goroutine and saving happens on the caller's goroutine. The
// notes.exported event goes back through the session goroutine.
func (s *Service) Export(ctx context.Context, saver export.Saver) (models.ExportResult, error) {
	var all []string
	if err := s.do(ctx, "export", func(sess *editor.Session) {
		all = sess.Store().All()
	}); err != nil {
		return models.ExportResult{}, err
	}
	doc, err := export.Save(ctx, saver, all, s.filename)
	if err != nil {
		return models.ExportResult{}, err
	}
	res := models.ExportResult{
		Filename: doc.Filename,
		Bytes:    len(doc.Content),
		Checksum: checksum.String(doc.Content),
		Notes:    len(all),
	}
	// The file is written, so report it even if ctx ends meanwhile.
	_ = s.do(context.WithoutCancel(ctx), "export_saved", func(*editor.Session) {
		s.emit(EventNotesExported, map[string]any{"filename": res.Filename, "notes": res.Notes})
	})
	return res, nil
}

func snapshot(sess *editor.Session) models.Session {
	st := sess.State()
	all := sess.Store().All()
	items := make([]models.NoteItem, len(all))
	for i, text := range all {
		sum := parser.Summarize(text)
		items[i] = models.NoteItem{
			Index:    i,
			Label:    fmt.Sprintf("Note %d", i+1),
			Title:    sum.Title,
			Tags:     nonNilSlice(sum.Tags),
			Words:    sum.Words,
			Checksum: checksum.String(text),
		}
	}
	return models.Session{
		Selection: st.Selection,
		Draft:     st.Draft,
		Editing:   st.Editing,
		Preview:   st.Preview,
		CanExport: len(all) > 0,
		Notes:     items,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
