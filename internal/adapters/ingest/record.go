// Package ingest turns text records into labeled actions.
package ingest

import (
	"fmt"
	"strconv"

	"github.com/okian/motion/internal/domain/model"
)

// valuesPerPoint is the number of numeric tokens that make up one DataPoint.
const valuesPerPoint = 3

// isNumeric reports whether c can appear inside a numeric token.
func isNumeric(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == '.', c == 'e', c == 'E', c == '+', c == '-':
		return true
	default:
		return false
	}
}

// ParseRecord splits one record line into its numeric values and label.
//
// Numeric tokens are maximal runs of [0-9.eE+-], each followed by exactly one
// delimiter byte. The first position that does not start a numeric token ends
// the value list; everything from there to the end of line is the label,
// verbatim.
func ParseRecord(line string) ([]float64, string, error) {
	var values []float64
	i := 0
	for i < len(line) && isNumeric(line[i]) {
		end := i
		for end < len(line) && isNumeric(line[end]) {
			end++
		}
		tok := line[i:end]
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, "", fmt.Errorf("%w: token %q at offset %d", ErrMalformedRecord, tok, i)
		}
		values = append(values, v)
		i = end + 1 // skip one delimiter
	}
	if i >= len(line) {
		return values, "", nil
	}
	return values, line[i:], nil
}

// Points groups values into (velocity, position, effort) triples in order.
// Trailing values that do not complete a triple are dropped.
func Points(values []float64) []model.DataPoint {
	n := len(values) / valuesPerPoint
	points := make([]model.DataPoint, 0, n)
	for i := 0; i < n*valuesPerPoint; i += valuesPerPoint {
		points = append(points, model.DataPoint{
			Velocity: values[i],
			Position: values[i+1],
			Effort:   values[i+2],
		})
	}
	return points
}

// ParseAction parses one record line into an Action and its label text.
func ParseAction(line string) (model.Action, string, error) {
	values, label, err := ParseRecord(line)
	if err != nil {
		return model.Action{}, "", err
	}
	return model.NewAction(Points(values)), label, nil
}
