// Package render writes actions back out as presentation lines.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
)

// FormatFloat formats v with six significant digits in the shortest of
// fixed or exponent notation, e.g. 1.5, 100000, 1e+06.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteAction writes one action as "vel pos eff " per sample followed by the
// label and a newline.
func WriteAction(w io.Writer, action model.Action, label string) error {
	bw := bufio.NewWriter(w)
	if err := writeAction(bw, action, label); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteLibrary writes every lift action and then every sweep action.
func WriteLibrary(w io.Writer, lib *library.Library) error {
	bw := bufio.NewWriter(w)
	for label, action := range lib.All() {
		if err := writeAction(bw, action, label.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeAction(bw *bufio.Writer, action model.Action, label string) error {
	for _, p := range action.All() {
		for _, v := range [...]float64{p.Velocity, p.Position, p.Effort} {
			if _, err := bw.WriteString(FormatFloat(v) + " "); err != nil {
				return fmt.Errorf("write action: %w", err)
			}
		}
	}
	if _, err := bw.WriteString(label + "\n"); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	return nil
}
