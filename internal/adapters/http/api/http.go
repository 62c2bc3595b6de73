// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/motion/internal/adapters/ingest"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
)

const defaultMaxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ClassifyDependencies
	JobDependencies
	LibraryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	classifyHandler *ClassifyHandler
	jobsHandler     *JobsHandler
	libraryHandler  *LibraryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		classifyHandler: NewClassifyHandler(deps, cfg.maxBodyBytes),
		jobsHandler:     NewJobsHandler(deps, cfg.maxBodyBytes),
		libraryHandler:  NewLibraryHandler(deps, cfg.maxBodyBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/classify", MetricsMiddleware(s.classifyHandler.HandleClassify, "classify"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "jobs"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
	mux.HandleFunc("/library", MetricsMiddleware(s.libraryHandler.HandleLibrary, "library"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON document of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// actionFrom builds the action a request describes. Explicit samples win
// over a record line; the record's label, if any, is ignored.
func actionFrom(req types.ClassifyRequest) (model.Action, error) {
	if len(req.Samples) > 0 {
		points := make([]model.DataPoint, len(req.Samples))
		for i, s := range req.Samples {
			points[i] = model.DataPoint{Velocity: s[0], Position: s[1], Effort: s[2]}
		}
		return model.NewAction(points), nil
	}
	if req.Record != "" {
		action, _, err := ingest.ParseAction(req.Record)
		if err != nil {
			return model.Action{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return action, nil
	}
	return model.Action{}, fmt.Errorf("%w: missing samples or record", ErrBadRequest)
}

// writeFailure maps a request error onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	err = translate(err)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, ErrUnprocessable):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
