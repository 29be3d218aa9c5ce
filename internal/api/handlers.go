package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/journal"
)

// maxCaptureBytes bounds the capture request body. Base64 inflates the image
// by a third, so this admits photos of roughly 15 MB.
const maxCaptureBytes = 20 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *journal.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journal.Service) *Handler {
	return &Handler{svc: svc}
}

// entryPath extracts the artifact path from the URL (everything after
// /api/entries/). Supports encoded slashes (e.g. uploads%2Falice%2Fx.md).
func entryPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Capture handles POST /api/capture: one journal page image in, a stored
// document plus a time-limited download link out.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCaptureBytes)

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("image is required"))
		return
	}

	subject := SubjectFrom(r.Context())
	result, err := h.svc.Process(r.Context(), subject, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid image payload"))
		case errors.Is(err, apperr.ErrUpstream):
			writeJSON(w, http.StatusBadGateway, errorBody("text recognition is unavailable"))
		default:
			// Detail is already logged by the pipeline; the client gets a
			// generic message.
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to process journal entry"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListEntries handles GET /api/entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	tag := q.Get("tag")

	subject := SubjectFrom(r.Context())
	items, total, err := h.svc.ListEntries(r.Context(), subject, limit, offset, tag)
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []EntryListItem{}
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: items, Total: total})
}

// GetEntry handles GET /api/entries/*: returns the raw markdown document.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	subject := SubjectFrom(r.Context())
	data, err := h.svc.GetEntry(r.Context(), subject, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get entry failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subject := SubjectFrom(r.Context())
	results, err := h.svc.Search(r.Context(), subject, q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
