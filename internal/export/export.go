// Package export builds the single markdown document that holds every note
// and hands it to a Saver.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/mdpad/internal/apperr"
)

const (
	// DefaultFilename is the name the exported document is saved under.
	DefaultFilename = "notes.md"
	// Separator goes between consecutive notes.
	Separator = "\n\n"
)

// Saver stores an exported document. Implementations decide where it goes:
// a file on disk, an HTTP download, a tool result.
type Saver interface {
	SaveAsFile(ctx context.Context, content, filename string) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, content, filename string) error

// SaveAsFile calls f.
func (f SaverFunc) SaveAsFile(ctx context.Context, content, filename string) error {
	return f(ctx, content, filename)
}

// Document is an export ready to be saved.
type Document struct {
	Content  string
	Filename string
}

// Build joins notes in order with a blank line between them.
func Build(notes []string, filename string) Document {
	if filename == "" {
		filename = DefaultFilename
	}
	return Document{
		Content:  strings.Join(notes, Separator),
		Filename: filename,
	}
}

// Save builds the document and passes it to s. An empty collection is
// rejected with apperr.ErrNothingToExport before s is called.
func Save(ctx context.Context, s Saver, notes []string, filename string) (Document, error) {
	if len(notes) == 0 {
		return Document{}, apperr.ErrNothingToExport
	}
	doc := Build(notes, filename)
	if err := s.SaveAsFile(ctx, doc.Content, doc.Filename); err != nil {
		return Document{}, fmt.Errorf("export: save %s: %w", doc.Filename, err)
	}
	return doc, nil
}
