// Package synth generates labeled motion datasets with a known ground truth
// and measures how well a classifier recovers it.
package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/pkg/logger"
)

// Record is one generated action with its true label.
type Record struct {
	Label  model.Label
	Action model.Action
}

// Generate builds cfg.Actions labeled actions. Every action draws from its own
// source seeded by (cfg.Seed, index), so the output does not depend on how
// the work is split between workers.
func Generate(ctx context.Context, cfg Config) ([]Record, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %+v", err, cfg)
	}
	logger.Get().Debug(ctx, "generating actions",
		logger.Int("actions", cfg.Actions),
		logger.Int("bins", cfg.Bins),
		logger.Int("seed", int(cfg.Seed)))

	records := make([]Record, cfg.Actions)
	if cfg.Actions == 0 {
		return records, nil
	}

	type result struct {
		index int
		rec   Record
		err   error
	}
	results := make(chan result, cfg.Actions)

	workers := max(1, min(cfg.Workers, cfg.Actions))
	perWorker := cfg.Actions / workers
	for w := range workers {
		start := w * perWorker
		end := start + perWorker
		if w == workers-1 {
			end = cfg.Actions
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					results <- result{index: i, err: err}
					continue
				}
				results <- result{index: i, rec: generateOne(cfg, i)}
			}
		}(start, end)
	}

	var firstErr error
	for range cfg.Actions {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("generate action %d: %w", r.index, r.err)
			}
			continue
		}
		records[r.index] = r.rec
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

func generateOne(cfg Config, index int) Record {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(index)))
	label := model.LabelSweep
	if rng.Float64() < cfg.LiftShare {
		label = model.LabelLift
	}

	points := make([]model.DataPoint, 0, cfg.Bins*model.JointsPerBin)
	for bin := 1; bin <= cfg.Bins; bin++ {
		phase := float64(bin-1) / float64(cfg.Bins)
		for joint := 1; joint <= model.JointsPerBin; joint++ {
			p := profile(label, joint, phase)
			p.Velocity += rng.NormFloat64() * cfg.Noise
			p.Position += rng.NormFloat64() * cfg.Noise
			p.Effort += rng.NormFloat64() * cfg.Noise
			points = append(points, p)
		}
	}
	return Record{Label: label, Action: model.NewAction(points)}
}

// profile is the noiseless sample of joint at phase (0..1) of a motion.
// Lifts load the shoulder and elbow joints against gravity; sweeps move the
// base joint horizontally with little effort.
func profile(label model.Label, joint int, phase float64) model.DataPoint {
	j := float64(joint)
	swing := math.Sin(math.Pi * phase)
	if label == model.LabelLift {
		return model.DataPoint{
			Velocity: 0.2 * swing * j / model.JointsPerBin,
			Position: 0.1*j + 0.8*phase,
			Effort:   2.5 - 0.2*j,
		}
	}
	return model.DataPoint{
		Velocity: 0.6 * swing,
		Position: -0.1*j + 1.2*phase,
		Effort:   0.4 + 0.02*j,
	}
}
