// Package ingest turns text records into labeled actions.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/pkg/logger"
	"github.com/okian/motion/pkg/metrics"
)

// maxLineBytes bounds a single record line.
const maxLineBytes = 16 << 20

// Discard reasons reported to metrics.
const (
	reasonUnknownLabel = "unknown_label"
	reasonMalformed    = "malformed"
	reasonPartialBin   = "partial_bin"
	reasonEmptyAction  = "empty_action"
)

// Stats counts the outcome of every line read by a Loader.
type Stats struct {
	Lines       int `json:"lines"`
	Lifts       int `json:"lifts"`
	Sweeps      int `json:"sweeps"`
	Discarded   int `json:"discarded"`
	Malformed   int `json:"malformed"`
	PartialBins int `json:"partial_bins"`
	Empty       int `json:"empty"`
}

// Kept returns the number of actions added to the library.
func (s Stats) Kept() int { return s.Lifts + s.Sweeps }

// Loader reads text records line by line into a Library.
type Loader struct {
	log logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{log: logger.Get().Named("ingest")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load appends every labeled record in r to lib. Records with an unknown label,
// a malformed numeric token, or (for a strict library) no samples or a partial
// bin are skipped and counted; only read failures and cancellation abort the
// load.
func (l *Loader) Load(ctx context.Context, r io.Reader, lib *library.Library) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++
		line := sc.Text()
		if line == "" {
			continue
		}

		action, label, err := ParseAction(line)
		if err != nil {
			stats.Malformed++
			metrics.RecordDiscarded(reasonMalformed)
			l.log.Debug(ctx, "skipping record", logger.Int("line", stats.Lines), logger.Error(err))
			continue
		}

		lbl, err := lib.AddChecked(action, label)
		switch {
		case err == nil:
			metrics.RecordIngested(lbl.String())
			if lbl == model.LabelLift {
				stats.Lifts++
			} else {
				stats.Sweeps++
			}
		case errors.Is(err, model.ErrPartialBin):
			stats.PartialBins++
			metrics.RecordDiscarded(reasonPartialBin)
			l.log.Debug(ctx, "skipping record", logger.Int("line", stats.Lines), logger.Error(err))
		case errors.Is(err, model.ErrEmptyAction):
			stats.Empty++
			metrics.RecordDiscarded(reasonEmptyAction)
			l.log.Debug(ctx, "skipping record without samples", logger.Int("line", stats.Lines), logger.String("label", label))
		default:
			stats.Discarded++
			metrics.RecordDiscarded(reasonUnknownLabel)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read records: %w", err)
	}

	counts := lib.Counts()
	for _, lbl := range model.Labels() {
		metrics.UpdateLibrarySize(lbl.String(), counts[lbl])
	}

	l.log.Info(ctx, "records loaded",
		logger.Int("lines", stats.Lines),
		logger.Int("lifts", stats.Lifts),
		logger.Int("sweeps", stats.Sweeps),
		logger.Int("discarded", stats.Discarded),
		logger.Int("malformed", stats.Malformed),
		logger.Int("partial_bins", stats.PartialBins),
		logger.Int("empty", stats.Empty),
	)
	return stats, nil
}

// ReadActions reads one action per non-empty line of r for classification.
// Labels are ignored. A malformed line fails the read with its line number.
func ReadActions(ctx context.Context, r io.Reader) ([]model.Action, error) {
	var actions []model.Action
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n++
		line := sc.Text()
		if line == "" {
			continue
		}
		action, _, err := ParseAction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		actions = append(actions, action)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}
	return actions, nil
}
