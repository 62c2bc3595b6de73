// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
)

// JobDependencies defines the asynchronous classification dependencies.
type JobDependencies interface {
	// Submit queues action. A repeated non-empty requestID reports duplicate
	// with the original job id.
	Submit(ctx context.Context, requestID string, action model.Action) (jobID string, duplicate bool, err error)
	Job(ctx context.Context, jobID string) (types.Job, error)
}

// JobsHandler handles job requests.
type JobsHandler struct {
	deps         JobDependencies
	maxBodyBytes int64
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies, maxBodyBytes int64) *JobsHandler {
	return &JobsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostJob handles POST /jobs requests.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_job"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.JobRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	action, err := actionFrom(req.ClassifyRequest)
	if err != nil {
		writeFailure(w, err)
		return
	}

	requestID := strings.TrimSpace(req.RequestID)
	jobID, duplicate, err := h.deps.Submit(r.Context(), requestID, action)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, types.Job{JobID: jobID, RequestID: requestID, Status: types.JobPending, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, types.Job{JobID: jobID, RequestID: requestID, Status: types.JobPending})
}

// HandleGetJob handles GET /jobs/{job_id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
