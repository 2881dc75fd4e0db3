package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mdpad/internal/export"
	"github.com/starford/mdpad/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// files, if non-nil, backs POST /export.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, files export.Saver) chi.Router {
	h := NewHandler(svc, files)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Editing session.
	r.Get("/session", h.GetSession)
	r.Put("/session/draft", h.ChangeDraft)
	r.Post("/session/insert", h.Insert)
	r.Get("/session/preview", h.Preview)
	r.Post("/session/preview/toggle", h.TogglePreview)

	// Note collection.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.AddNote)
	r.Post("/notes/{index}/select", h.SelectNote)
	r.Delete("/notes/{index}", h.DeleteNote)

	// Export.
	r.Get("/export", h.DownloadExport)
	if files != nil {
		r.Post("/export", h.SaveExport)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
