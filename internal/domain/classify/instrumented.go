// Package classify labels an unknown action by nearest-neighbour votes
// against a reference library.
package classify

import (
	"context"
	"errors"
	"time"

	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/pkg/metrics"
)

// Failure kinds reported to metrics.
const (
	KindIndexOverrun = "index_overrun"
	KindCancelled    = "cancelled"
	KindOther        = "other"
)

// FailureKind buckets a classification error for metrics and logs.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, model.ErrIndexOverrun), errors.Is(err, model.ErrInvalidCoordinate):
		return KindIndexOverrun
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindOther
	}
}

// Instrumented wraps a Classifier and records outcome, votes and latency.
type Instrumented struct {
	next Classifier
}

// WithMetrics wraps next so every call is recorded.
func WithMetrics(next Classifier) *Instrumented {
	return &Instrumented{next: next}
}

// Classify delegates to the wrapped classifier.
func (c *Instrumented) Classify(ctx context.Context, action model.Action) (Result, error) {
	start := time.Now()
	res, err := c.next.Classify(ctx, action)
	if err != nil {
		metrics.RecordClassificationError(FailureKind(err))
		return res, err
	}
	metrics.RecordClassification(res.Label.String(), float64(time.Since(start).Microseconds())/1000)
	for _, v := range res.Votes {
		metrics.RecordVotes(v.Label.String(), v.Count)
	}
	return res, nil
}
