package synth

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteRecords writes records as comma-separated reference lines that the
// ingestion loader reads back: v,p,e per sample, then the label.
func WriteRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		for _, p := range rec.Action.Points() {
			bw.WriteString(strconv.FormatFloat(p.Velocity, 'g', -1, 64))
			bw.WriteByte(',')
			bw.WriteString(strconv.FormatFloat(p.Position, 'g', -1, 64))
			bw.WriteByte(',')
			bw.WriteString(strconv.FormatFloat(p.Effort, 'g', -1, 64))
			bw.WriteByte(',')
		}
		bw.WriteString(rec.Label.String())
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Split returns the first n records as references and the rest as probes.
func Split(records []Record, n int) (refs, probes []Record) {
	n = max(0, min(n, len(records)))
	return records[:n], records[n:]
}
