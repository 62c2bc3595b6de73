package synth

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/motion/internal/domain/classify"
	"github.com/okian/motion/pkg/logger"
)

// Report summarises a classifier run over labeled probes.
type Report struct {
	Total     int                       `json:"total"`
	Correct   int                       `json:"correct"`
	Wrong     int                       `json:"wrong"`
	Failed    int                       `json:"failed"`
	Accuracy  float64                   `json:"accuracy"`
	Confusion map[string]map[string]int `json:"confusion"`
}

// Evaluate classifies every probe with c using up to workers goroutines and
// compares the result to the probe's label. Classification errors count as
// failures; only a cancelled ctx stops the run.
func Evaluate(ctx context.Context, c classify.Classifier, probes []Record, workers int) (Report, error) {
	workers = max(1, workers)
	jobs := make(chan Record)

	var (
		correct, wrong, failed int64
		mu                     sync.Mutex
		confusion              = map[string]map[string]int{}
		wg                     sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for probe := range jobs {
				res, err := c.Classify(ctx, probe.Action)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "probe failed", logger.Error(err))
					continue
				}
				if res.Label == probe.Label {
					atomic.AddInt64(&correct, 1)
				} else {
					atomic.AddInt64(&wrong, 1)
				}
				mu.Lock()
				row := confusion[probe.Label.String()]
				if row == nil {
					row = map[string]int{}
					confusion[probe.Label.String()] = row
				}
				row[res.Label.String()]++
				mu.Unlock()
			}
		}()
	}

	var err error
feed:
	for _, p := range probes {
		select {
		case jobs <- p:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Total:     len(probes),
		Correct:   int(correct),
		Wrong:     int(wrong),
		Failed:    int(failed),
		Confusion: confusion,
	}
	if r.Total > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Total)
	}
	logger.Get().Info(ctx, "evaluation complete",
		logger.Int("total", r.Total),
		logger.Int("correct", r.Correct),
		logger.Int("failed", r.Failed),
		logger.Float64("accuracy", r.Accuracy))
	return r, nil
}
