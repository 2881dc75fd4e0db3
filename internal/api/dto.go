package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mdpad/internal/editor"
	"github.com/starford/mdpad/internal/models"
)

// DraftRequest is the request body for PUT /session/draft.
type DraftRequest struct {
	Text *string `json:"text" example:"# Groceries" validate:"required"`
}

// Validate implements validation.Validatable.
func (r DraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.NotNil),
	)
}

// InsertRequest is the request body for POST /session/insert. Exactly one of
// Markup and Format is set. Start and End are UTF-16 offsets into Text, as
// reported by the textarea's selectionStart and selectionEnd.
type InsertRequest struct {
	Markup string        `json:"markup,omitempty" example:"[link](url)"`
	Format editor.Format `json:"format,omitempty" example:"bold"`
	Start  int           `json:"start" example:"5"`
	End    int           `json:"end" example:"5"`
	Text   string        `json:"text" example:"hello world"`
}

// Validate implements validation.Validatable.
func (r InsertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Markup,
			validation.When(r.Format != "", validation.Empty.Error("markup and format are mutually exclusive")),
		),
		validation.Field(&r.Format,
			validation.When(r.Markup == "", validation.Required.Error("markup or format is required")),
		),
		validation.Field(&r.Start, validation.Min(0)),
		validation.Field(&r.End, validation.Min(0)),
	)
}

// Cursor converts the request to an editor cursor.
func (r InsertRequest) Cursor() editor.Cursor {
	return editor.Cursor{Text: r.Text, Start: r.Start, End: r.End}
}

// SessionResponse is the session snapshot (aliased from the models layer).
type SessionResponse = models.Session

// NoteListItem is one sidebar entry (aliased from the models layer).
type NoteListItem = models.NoteItem

// NoteListResponse wraps the sidebar list.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"3" validate:"required"`
}

// InsertResponse is returned by POST /session/insert.
type InsertResponse = models.InsertResult

// AddNoteResponse is returned by POST /notes.
type AddNoteResponse = models.AddResult

// PreviewResponse is returned by GET /session/preview.
type PreviewResponse = models.PreviewResult

// ExportResponse is returned by POST /export.
type ExportResponse = models.ExportResult
