package classify

import "github.com/okian/motion/internal/domain/model"

// Vote is the number of coordinates that favored one label.
type Vote struct {
	Label model.Label `json:"label"`
	Count int         `json:"count"`
}

// Tally counts votes per label and remembers the order in which labels were
// first seen. It is scoped to a single classification.
type Tally struct {
	votes []Vote
	index map[model.Label]int
	total int
}

// Add records one vote for label.
func (t *Tally) Add(label model.Label) {
	if t.index == nil {
		t.index = make(map[model.Label]int)
	}
	i, ok := t.index[label]
	if !ok {
		i = len(t.votes)
		t.index[label] = i
		t.votes = append(t.votes, Vote{Label: label})
	}
	t.votes[i].Count++
	t.total++
}

// Majority returns the label with the strictly highest count. On a tie the
// label inserted first wins. An empty tally yields "".
func (t *Tally) Majority() model.Label {
	var (
		best  model.Label
		count int
	)
	for _, v := range t.votes {
		if v.Count > count {
			best, count = v.Label, v.Count
		}
	}
	return best
}

// Votes returns the per-label counts in insertion order.
func (t *Tally) Votes() []Vote {
	out := make([]Vote, len(t.votes))
	copy(out, t.votes)
	return out
}

// Total returns the number of votes recorded.
func (t *Tally) Total() int { return t.total }
