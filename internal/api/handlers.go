package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mdpad/internal/apperr"
	"github.com/starford/mdpad/internal/checksum"
	"github.com/starford/mdpad/internal/export"
	"github.com/starford/mdpad/internal/noteservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc   *noteservice.Service
	files export.Saver
}

// NewHandler creates a new Handler. files receives exports saved with
// POST /export; it may be nil when saving to disk is not offered.
func NewHandler(svc *noteservice.Service, files export.Saver) *Handler {
	return &Handler{svc: svc, files: files}
}

// decodeJSON reads a size-limited JSON body into v and validates it when v
// implements Validate.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", apperr.ErrInvalidInput)
	}
	if vv, ok := v.(interface{ Validate() error }); ok {
		if err := vv.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, err.Error())
		}
	}
	return nil
}

// noteIndex parses the {index} URL parameter.
func noteIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: index must be an integer", apperr.ErrInvalidInput)
	}
	return i, nil
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrUnknownFormat):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNothingToExport):
		writeJSON(w, http.StatusConflict, errorBody("no notes to export"))
	case errors.Is(err, apperr.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("session closed"))
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetSession handles GET /api/session.
//
//	@Summary		Get the editing session and note list
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ChangeDraft handles PUT /api/session/draft.
//
//	@Summary		Replace the draft as typed text
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DraftRequest	true	"New draft text"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/draft [put]
func (h *Handler) ChangeDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "change draft", err)
		return
	}
	snap, err := h.svc.ChangeText(r.Context(), *req.Text)
	if err != nil {
		writeError(w, "change draft", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Insert handles POST /api/session/insert.
//
//	@Summary		Insert markup or a toolbar format at the cursor
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InsertRequest	true	"Cursor and markup"
//	@Success		200		{object}	InsertResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/insert [post]
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "insert", err)
		return
	}

	ctx := r.Context()
	var (
		res InsertResponse
		err error
	)
	if req.Format != "" {
		res, err = h.svc.InsertFormat(ctx, req.Format, req.Cursor())
	} else {
		res, err = h.svc.InsertMarkup(ctx, req.Markup, req.Cursor())
	}
	if err != nil {
		writeError(w, "insert", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TogglePreview handles POST /api/session/preview/toggle.
//
//	@Summary		Toggle preview mode
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/session/preview/toggle [post]
func (h *Handler) TogglePreview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.TogglePreview(r.Context())
	if err != nil {
		writeError(w, "toggle preview", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Preview handles GET /api/session/preview.
//
//	@Summary		Render the draft when the preview is shown
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	PreviewResponse
//	@Success		204	"Preview not shown"
//	@Security		BearerAuth
//	@Router			/session/preview [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Preview(r.Context())
	if err != nil {
		writeError(w, "preview", err)
		return
	}
	if !p.Shown {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes in order
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: snap.Notes, Total: len(snap.Notes)})
}

// AddNote handles POST /api/notes.
//
//	@Summary		Save the draft as a new note
//	@Tags			notes
//	@Produce		json
//	@Success		201	{object}	AddNoteResponse
//	@Success		200	{object}	AddNoteResponse	"Blank draft, nothing added"
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.AddNote(r.Context())
	if err != nil {
		writeError(w, "add note", err)
		return
	}
	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// SelectNote handles POST /api/notes/{index}/select.
//
//	@Summary		Load a note into the draft
//	@Tags			notes
//	@Produce		json
//	@Param			index	path		int	true	"Note index"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{index}/select [post]
func (h *Handler) SelectNote(w http.ResponseWriter, r *http.Request) {
	i, err := noteIndex(r)
	if err != nil {
		writeError(w, "select note", err)
		return
	}
	snap, err := h.svc.SelectNote(r.Context(), i)
	if err != nil {
		writeError(w, "select note", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteNote handles DELETE /api/notes/{index}.
//
//	@Summary		Delete a note and clear the draft
//	@Tags			notes
//	@Produce		json
//	@Param			index	path		int	true	"Note index"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{index} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	i, err := noteIndex(r)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	snap, err := h.svc.DeleteNote(r.Context(), i)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// downloadSaver writes an export as an HTTP attachment.
type downloadSaver struct {
	w http.ResponseWriter
	r *http.Request
}

func (d downloadSaver) SaveAsFile(_ context.Context, content, filename string) error {
	etag := checksum.ETag(content)
	d.w.Header().Set("ETag", etag)
	if checksum.Matches(d.r.Header.Get("If-None-Match"), etag) {
		d.w.WriteHeader(http.StatusNotModified)
		return nil
	}
	d.w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	d.w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	d.w.WriteHeader(http.StatusOK)
	_, err := d.w.Write([]byte(content))
	return err
}

// DownloadExport handles GET /api/export.
//
//	@Summary		Download every note as one markdown file
//	@Tags			export
//	@Produce		text/markdown
//	@Success		200	{string}	string	"Exported markdown"
//	@Success		304	"Unchanged since If-None-Match"
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Export(r.Context(), downloadSaver{w: w, r: r}); err != nil {
		if errors.Is(err, apperr.ErrNothingToExport) {
			writeError(w, "export download", err)
			return
		}
		// Headers may already be sent.
		slog.Error("export download failed", slog.String("error", err.Error()))
	}
}

// SaveExport handles POST /api/export.
//
//	@Summary		Save every note as one markdown file in the export directory
//	@Tags			export
//	@Produce		json
//	@Success		201	{object}	ExportResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [post]
func (h *Handler) SaveExport(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Export(r.Context(), h.files)
	if err != nil {
		writeError(w, "export save", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
