// Package classify labels an unknown action by nearest-neighbour votes
// against a reference library.
package classify

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
)

// Result is the outcome of classifying one action.
type Result struct {
	Label model.Label
	Votes []Vote // insertion order
	Total int
}

// Classifier labels a whole action.
type Classifier interface {
	// Classify walks every sample of action and returns the majority label.
	Classify(ctx context.Context, action model.Action) (Result, error)
}

// Source provides the reference set a classification runs against.
type Source interface {
	Snapshot() library.Snapshot
}

// Nearest returns the smallest distance from point to any sample in column,
// or +Inf for an empty column.
func Nearest(point model.DataPoint, column []model.DataPoint) float64 {
	best := math.Inf(1)
	for _, c := range column {
		if d := model.Distance(point, c); best > d {
			best = d
		}
	}
	return best
}

// ClassifyPoint returns sweep only when the nearest sweep sample is strictly
// closer than the nearest lift sample; every other case, including exact ties
// and two empty columns, returns lift.
func ClassifyPoint(point model.DataPoint, lifts, sweeps []model.DataPoint) model.Label {
	if Nearest(point, lifts) > Nearest(point, sweeps) {
		return model.LabelSweep
	}
	return model.LabelLift
}

// NearestNeighbor implements Classifier with one nearest-neighbour comparison
// per (joint, bin) coordinate and a majority vote over all coordinates.
type NearestNeighbor struct {
	source Source
}

// New creates a NearestNeighbor classifier reading from source.
func New(source Source) *NearestNeighbor {
	return &NearestNeighbor{source: source}
}

// Classify walks action bin by bin and joint by joint. A trailing partial bin
// is walked for as many samples as it holds. Reference actions too short for a
// walked coordinate fail the classification with model.ErrIndexOverrun.
func (c *NearestNeighbor) Classify(ctx context.Context, action model.Action) (Result, error) {
	snap := c.source.Snapshot()

	var tally Tally
	for i, p := range action.All() {
		joint, bin := model.Coordinate(i)
		if joint == 1 {
			if err := ctx.Err(); err != nil {
				return Result{}, fmt.Errorf("classify cancelled at bin %d: %w", bin, err)
			}
		}

		lifts, err := snap.Column(joint, bin, model.LabelLift)
		if err != nil {
			return Result{}, fmt.Errorf("extract lift column joint=%d bin=%d: %w", joint, bin, err)
		}
		sweeps, err := snap.Column(joint, bin, model.LabelSweep)
		if err != nil {
			return Result{}, fmt.Errorf("extract sweep column joint=%d bin=%d: %w", joint, bin, err)
		}
		tally.Add(ClassifyPoint(p, lifts, sweeps))
	}

	return Result{
		Label: tally.Majority(),
		Votes: tally.Votes(),
		Total: tally.Total(),
	}, nil
}
