// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/motion/internal/adapters/ingest"
	"github.com/okian/motion/internal/adapters/render"
	"github.com/okian/motion/internal/domain/library"
)

// LibraryDependencies defines the reference library dependencies.
type LibraryDependencies interface {
	Library() *library.Library
	LoadLibrary(ctx context.Context, r io.Reader) (ingest.Stats, error)
}

// LibraryHandler serves and extends the reference library.
type LibraryHandler struct {
	deps         LibraryDependencies
	maxBodyBytes int64
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(deps LibraryDependencies, maxBodyBytes int64) *LibraryHandler {
	return &LibraryHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleLibrary handles GET /library (presentation text) and POST /library
// (labeled records appended to the library).
func (h *LibraryHandler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *LibraryHandler) handleGet(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_ = render.WriteLibrary(w, h.deps.Library())
}

func (h *LibraryHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_library"
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	stats, err := h.deps.LoadLibrary(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, WrapKind(op, ErrBodyTooLarge, err))
			return
		}
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
