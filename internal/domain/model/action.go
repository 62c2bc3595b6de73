// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"iter"
)

// JointsPerBin is the number of joint samples recorded in every bin.
const JointsPerBin = 8

// Action is one recorded motion. Samples are stored bin-major: the sample for
// 1-based (joint, bin) lives at flat index (bin-1)*JointsPerBin + (joint-1).
// An Action is never mutated after construction.
type Action struct {
	points []DataPoint
}

// NewAction copies points into a new Action. A trailing partial bin is kept.
func NewAction(points []DataPoint) Action {
	cp := make([]DataPoint, len(points))
	copy(cp, points)
	return Action{points: cp}
}

// CheckBins reports why a cannot serve as a reference action: it has no
// samples, or its last bin is partial.
func (a Action) CheckBins() error {
	switch {
	case len(a.points) == 0:
		return ErrEmptyAction
	case !a.Complete():
		return fmt.Errorf("%w: %d samples", ErrPartialBin, len(a.points))
	}
	return nil
}

// Index maps a 1-based (joint, bin) coordinate to a flat sample index.
func Index(joint, bin int) (int, error) {
	if joint < 1 || joint > JointsPerBin || bin < 1 {
		return 0, fmt.Errorf("%w: joint=%d bin=%d", ErrInvalidCoordinate, joint, bin)
	}
	return (bin-1)*JointsPerBin + (joint - 1), nil
}

// Coordinate is the inverse of Index.
func Coordinate(index int) (joint, bin int) {
	return index%JointsPerBin + 1, index/JointsPerBin + 1
}

// Len returns the number of samples.
func (a Action) Len() int { return len(a.points) }

// Bins returns the number of bins touched by the action, counting a trailing
// partial bin.
func (a Action) Bins() int {
	return (len(a.points) + JointsPerBin - 1) / JointsPerBin
}

// Complete reports whether every bin holds exactly JointsPerBin samples.
func (a Action) Complete() bool { return len(a.points)%JointsPerBin == 0 }

// At returns the sample at (joint, bin). Coordinates past the end of the action
// yield ErrIndexOverrun instead of reading out of bounds.
func (a Action) At(joint, bin int) (DataPoint, error) {
	i, err := Index(joint, bin)
	if err != nil {
		return DataPoint{}, err
	}
	if i >= len(a.points) {
		return DataPoint{}, fmt.Errorf("%w: joint=%d bin=%d index=%d len=%d",
			ErrIndexOverrun, joint, bin, i, len(a.points))
	}
	return a.points[i], nil
}

// All yields every sample with its flat index, in storage order.
func (a Action) All() iter.Seq2[int, DataPoint] {
	return func(yield func(int, DataPoint) bool) {
		for i, p := range a.points {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Points returns a copy of the samples in storage order.
func (a Action) Points() []DataPoint {
	cp := make([]DataPoint, len(a.points))
	copy(cp, a.points)
	return cp
}
