// Package library holds the labeled reference actions used for nearest-neighbour lookups.
package library

import (
	"fmt"
	"iter"
	"sync"

	"github.com/okian/motion/internal/domain/model"
)

// Pair is one ingested action and the label text that came with it.
type Pair struct {
	Action model.Action
	Label  string
}

// Library is the reference set: one append-only collection per known label.
// Membership is decided once, by the label, when an action is added.
type Library struct {
	mu     sync.RWMutex
	lifts  []model.Action
	sweeps []model.Action
	strict bool
}

// New creates an empty Library.
func New(opts ...Option) *Library {
	l := &Library{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromPairs builds a Library from (action, label) pairs in order. Pairs with
// an unknown label are discarded.
func FromPairs(pairs []Pair, opts ...Option) *Library {
	l := New(opts...)
	for _, p := range pairs {
		l.Add(p.Action, p.Label)
	}
	return l
}

// Add appends action to the collection named by label and reports whether it
// was kept. Unknown labels, including the empty label, are discarded silently.
func (l *Library) Add(action model.Action, label string) bool {
	_, err := l.AddChecked(action, label)
	return err == nil
}

// AddChecked is Add with the reason for a discard.
func (l *Library) AddChecked(action model.Action, label string) (model.Label, error) {
	lbl, ok := model.ParseLabel(label)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	if l.strict {
		if err := action.CheckBins(); err != nil {
			return "", err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch lbl {
	case model.LabelLift:
		l.lifts = append(l.lifts, action)
	case model.LabelSweep:
		l.sweeps = append(l.sweeps, action)
	}
	return lbl, nil
}

// Snapshot captures the collections as they are now. Later adds are not
// visible through it.
func (l *Library) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Lifts:  l.lifts[:len(l.lifts):len(l.lifts)],
		Sweeps: l.sweeps[:len(l.sweeps):len(l.sweeps)],
	}
}

// Lifts returns the lift collection.
func (l *Library) Lifts() []model.Action { return l.Snapshot().Lifts }

// Sweeps returns the sweep collection.
func (l *Library) Sweeps() []model.Action { return l.Snapshot().Sweeps }

// Collection returns the actions stored under label.
func (l *Library) Collection(label model.Label) []model.Action {
	return l.Snapshot().Collection(label)
}

// Counts returns the collection sizes keyed by label.
func (l *Library) Counts() map[model.Label]int {
	s := l.Snapshot()
	counts := make(map[model.Label]int, len(model.Labels()))
	for _, label := range model.Labels() {
		counts[label] = len(s.Collection(label))
	}
	return counts
}

// Len returns the total number of reference actions.
func (l *Library) Len() int {
	s := l.Snapshot()
	return len(s.Lifts) + len(s.Sweeps)
}

// All yields every action with its label: all lifts, then all sweeps.
func (l *Library) All() iter.Seq2[model.Label, model.Action] {
	return l.Snapshot().All()
}

// Snapshot is a read-only view of a Library at one point in time.
type Snapshot struct {
	Lifts  []model.Action
	Sweeps []model.Action
}

// Collection returns the actions stored under label.
func (s Snapshot) Collection(label model.Label) []model.Action {
	switch label {
	case model.LabelLift:
		return s.Lifts
	case model.LabelSweep:
		return s.Sweeps
	default:
		return nil
	}
}

// Column extracts the (joint, bin) sample from every action stored under label.
func (s Snapshot) Column(joint, bin int, label model.Label) ([]model.DataPoint, error) {
	return Extract(joint, bin, s.Collection(label))
}

// All yields every action with its label: all lifts, then all sweeps.
func (s Snapshot) All() iter.Seq2[model.Label, model.Action] {
	return func(yield func(model.Label, model.Action) bool) {
		for _, a := range s.Lifts {
			if !yield(model.LabelLift, a) {
				return
			}
		}
		for _, a := range s.Sweeps {
			if !yield(model.LabelSweep, a) {
				return
			}
		}
	}
}

// Extract returns, in collection order, the sample at (joint, bin) of every
// action. Every action must hold at least that coordinate; the first that does
// not fails the whole extraction with model.ErrIndexOverrun.
func Extract(joint, bin int, collection []model.Action) ([]model.DataPoint, error) {
	if _, err := model.Index(joint, bin); err != nil {
		return nil, err
	}
	column := make([]model.DataPoint, 0, len(collection))
	for i, a := range collection {
		p, err := a.At(joint, bin)
		if err != nil {
			return nil, fmt.Errorf("reference action %d: %w", i, err)
		}
		column = append(column, p)
	}
	return column, nil
}
