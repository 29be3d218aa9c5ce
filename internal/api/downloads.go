package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kedbin/ai-devops-journal/internal/apperr"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// LinkVerifier checks the signature and expiry on a download request.
type LinkVerifier interface {
	Verify(path string, exp int64, sig string) error
}

// DownloadHandler serves stored artifacts to holders of a valid signed link.
// The link is the sole credential: no session or bearer token is consulted.
type DownloadHandler struct {
	verifier LinkVerifier
	store    storage.Provider
}

// NewDownloadHandler creates a handler over the archive.
func NewDownloadHandler(verifier LinkVerifier, store storage.Provider) *DownloadHandler {
	return &DownloadHandler{verifier: verifier, store: store}
}

// Serve handles GET /d/*?exp=<unix>&sig=<hex>.
func (h *DownloadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	artifact, err := url.PathUnescape(raw)
	if err != nil || artifact == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid download path"))
		return
	}

	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid link"))
		return
	}
	sig := r.URL.Query().Get("sig")

	if err := h.verifier.Verify(artifact, exp, sig); err != nil {
		switch {
		case errors.Is(err, apperr.ErrLinkExpired):
			writeJSON(w, http.StatusGone, errorBody("link expired"))
		default:
			// Bad signatures and expired links both carry no detail about
			// whether the artifact exists.
			writeJSON(w, http.StatusForbidden, errorBody("invalid link"))
		}
		return
	}

	data, err := h.store.Read(artifact)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("download read failed", slog.String("path", artifact), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(artifact)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
