// Package testutil provides shared test helpers for session services and
// export directories.
package testutil

import (
	"testing"

	"github.com/starford/mdpad/internal/noteservice"
	"github.com/starford/mdpad/internal/notes"
	"github.com/starford/mdpad/internal/render"
	"github.com/starford/mdpad/internal/storage"
)

// Service starts a session service over an empty store and stops it when the
// test ends.
func Service(t *testing.T, opts ...noteservice.Option) *noteservice.Service {
	t.Helper()
	svc := noteservice.New(notes.NewStore(), render.New(), opts...)
	t.Cleanup(svc.Close)
	return svc
}

// ExportDir creates a temporary export directory with a storage.FS over it.
func ExportDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
