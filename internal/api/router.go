package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kedbin/ai-devops-journal/internal/journal"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// NewRouter creates a chi router with all authenticated API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *journal.Service, verifier Verifier, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(verifier))

	// Capture pipeline.
	r.Post("/capture", h.Capture)

	// Archive browsing.
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/*", h.GetEntry)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewDownloadRouter creates the unauthenticated signed-link route group,
// mounted at /d.
func NewDownloadRouter(verifier LinkVerifier, store storage.Provider) chi.Router {
	dh := NewDownloadHandler(verifier, store)
	r := chi.NewRouter()
	r.Get("/*", dh.Serve)
	return r
}
