// Package model contains domain models passed between layers.
package model

// Label names a gesture category.
type Label string

// Known gesture categories. Lift is declared first and wins exact ties.
const (
	LabelLift  Label = "lift"
	LabelSweep Label = "sweep"
)

// Labels lists the known categories in declaration order.
func Labels() []Label {
	return []Label{LabelLift, LabelSweep}
}

// ParseLabel reports whether s is exactly one of the known category strings.
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case LabelLift:
		return LabelLift, true
	case LabelSweep:
		return LabelSweep, true
	default:
		return "", false
	}
}

func (l Label) String() string { return string(l) }
