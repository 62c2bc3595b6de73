// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
)

// ClassifyDependencies defines the synchronous classification dependency.
type ClassifyDependencies interface {
	Classify(ctx context.Context, action model.Action) (types.Classification, error)
}

// ClassifyHandler handles classification requests.
type ClassifyHandler struct {
	deps         ClassifyDependencies
	maxBodyBytes int64
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(deps ClassifyDependencies, maxBodyBytes int64) *ClassifyHandler {
	return &ClassifyHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleClassify handles POST /classify requests.
func (h *ClassifyHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.ClassifyRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	action, err := actionFrom(req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.deps.Classify(r.Context(), action)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
