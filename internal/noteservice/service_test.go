package noteservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdpad/internal/apperr"
	"github.com/starford/mdpad/internal/editor"
	"github.com/starford/mdpad/internal/export"
	"github.com/starford/mdpad/internal/notes"
	"github.com/starford/mdpad/internal/render"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := New(notes.NewStore(), render.New(), opts...)
	t.Cleanup(svc.Close)
	return svc
}

func addNote(t *testing.T, svc *Service, text string) int {
	t.Helper()
	ctx := context.Background()
	_, err := svc.ChangeText(ctx, text)
	require.NoError(t, err)
	res, err := svc.AddNote(ctx)
	require.NoError(t, err)
	require.True(t, res.Added, "add %q", text)
	return res.Index
}

func TestSnapshotOfEmptySession(t *testing.T) {
	svc := newService(t)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, editor.NoSelection, snap.Selection)
	assert.Empty(t, snap.Draft)
	assert.False(t, snap.CanExport)
	assert.NotNil(t, snap.Notes)
	assert.Empty(t, snap.Notes)
}

func TestAddSelectDeleteFlow(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := newService(t, WithEventFunc(rec.record))

	addNote(t, svc, "# Alpha\nfirst")
	addNote(t, svc, "beta #tag")

	snap, err := svc.SelectNote(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Selection)
	assert.Equal(t, "# Alpha\nfirst", snap.Draft)
	require.Len(t, snap.Notes, 2)
	assert.Equal(t, "Note 1", snap.Notes[0].Label)
	assert.Equal(t, "Alpha", snap.Notes[0].Title)
	assert.Equal(t, []string{"tag"}, snap.Notes[1].Tags)
	assert.True(t, snap.CanExport)

	snap, err = svc.DeleteNote(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, editor.NoSelection, snap.Selection)
	assert.Empty(t, snap.Draft)
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "Note 1", snap.Notes[0].Label)

	assert.Equal(t, []string{
		EventDraftChanged, EventNoteAdded,
		EventDraftChanged, EventNoteAdded,
		EventNoteSelected, EventNoteDeleted,
	}, rec.kinds())
}

func TestAddBlankDraftIsNotAnError(t *testing.T) {
	rec := &recorder{}
	svc := newService(t, WithEventFunc(rec.record))

	res, err := svc.AddNote(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Empty(t, res.Session.Notes)
	assert.Empty(t, rec.kinds())
}

func TestInsertFormatAndList(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	res, err := svc.InsertFormat(ctx, editor.FormatBold, editor.Cursor{Text: "hello world", Start: 5, End: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Caret)
	assert.Equal(t, "hello** world", res.Session.Draft)
	assert.True(t, res.Session.Editing)

	res, err = svc.InsertList(ctx, editor.ListOrdered, editor.Cursor{})
	require.NoError(t, err)
	assert.Equal(t, "1. \n", res.Session.Draft)

	_, err = svc.InsertFormat(ctx, "marquee", editor.Cursor{})
	assert.ErrorIs(t, err, apperr.ErrUnknownFormat)

	res, err = svc.InsertMarkup(ctx, "[link](url)", editor.Cursor{Text: "see ", Start: 4, End: 4})
	require.NoError(t, err)
	assert.Equal(t, "see [link](url)", res.Session.Draft)
	assert.Equal(t, 15, res.Caret)
}

func TestPreviewOnlyWhenSelected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	addNote(t, svc, "**strong**")

	_, err := svc.TogglePreview(ctx)
	require.NoError(t, err)
	p, err := svc.Preview(ctx)
	require.NoError(t, err)
	assert.True(t, p.Shown, "the added note stays selected")
	assert.Empty(t, p.HTML, "the draft was cleared by add")

	_, err = svc.SelectNote(ctx, 0)
	require.NoError(t, err)
	p, err = svc.Preview(ctx)
	require.NoError(t, err)
	assert.False(t, p.Shown, "selecting leaves preview mode")

	_, err = svc.TogglePreview(ctx)
	require.NoError(t, err)
	p, err = svc.Preview(ctx)
	require.NoError(t, err)
	assert.True(t, p.Shown)
	assert.Contains(t, p.HTML, "<strong>strong</strong>")
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := newService(t, WithEventFunc(rec.record), WithExportFilename("all.md"))

	var saved export.Document
	saver := export.SaverFunc(func(_ context.Context, content, filename string) error {
		saved = export.Document{Content: content, Filename: filename}
		return nil
	})

	_, err := svc.Export(ctx, saver)
	assert.ErrorIs(t, err, apperr.ErrNothingToExport)

	addNote(t, svc, "a")
	addNote(t, svc, "b")

	res, err := svc.Export(ctx, saver)
	require.NoError(t, err)
	assert.Equal(t, export.Document{Content: "a\n\nb", Filename: "all.md"}, saved)
	assert.Equal(t, 2, res.Notes)
	assert.Equal(t, 4, res.Bytes)
	assert.Contains(t, rec.kinds(), EventNotesExported)

	doc, err := svc.ExportContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb", doc.Content)
}

func TestExportSaverFailure(t *testing.T) {
	svc := newService(t)
	addNote(t, svc, "a")

	boom := errors.New("read-only")
	_, err := svc.Export(context.Background(), export.SaverFunc(func(context.Context, string, string) error {
		return boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestExportEventRunsOnSessionGoroutine(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	entered := make(chan struct{})
	svc := newService(t, WithEventFunc(func(kind string, _ map[string]any) {
		if kind == EventNotesExported {
			close(entered)
			<-release
		}
	}))
	addNote(t, svc, "a")

	exported := make(chan error, 1)
	go func() {
		_, err := svc.Export(ctx, export.SaverFunc(func(context.Context, string, string) error { return nil }))
		exported <- err
	}()
	<-entered

	// The loop is busy delivering the event, so a snapshot has to wait.
	snapCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := svc.Snapshot(snapCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-exported)
	_, err = svc.Snapshot(ctx)
	assert.NoError(t, err)
}

func TestExportEventSurvivesCancelAfterSave(t *testing.T) {
	rec := &recorder{}
	svc := newService(t, WithEventFunc(rec.record))
	addNote(t, svc, "a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := svc.Export(ctx, export.SaverFunc(func(context.Context, string, string) error {
		cancel()
		return nil
	}))
	require.NoError(t, err)
	assert.Contains(t, rec.kinds(), EventNotesExported)
}

func TestConcurrentRequestsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.ChangeText(ctx, fmt.Sprintf("note %d", i))
			_, _ = svc.AddNote(ctx)
		}(i)
	}
	wg.Wait()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(snap.Notes), n)
	assert.NotEmpty(t, snap.Notes)
	for _, item := range snap.Notes {
		assert.NotEmpty(t, item.Title)
	}
}

func TestClosedService(t *testing.T) {
	svc := New(notes.NewStore(), render.New())
	svc.Close()
	svc.Close()

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, apperr.ErrClosed)
}

func TestCancelledContext(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The loop may still accept the request, so either outcome is valid,
	// but the call must return.
	_, err := svc.Snapshot(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
