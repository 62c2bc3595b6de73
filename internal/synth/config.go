package synth

import "runtime"

// Config controls dataset generation.
type Config struct {
	Actions   int     // number of actions to generate
	Bins      int     // bins per action
	Seed      uint64  // same seed, same dataset
	LiftShare float64 // fraction of actions labeled lift, 0..1
	Noise     float64 // standard deviation of per-sample noise
	Workers   int     // concurrent generators
}

// DefaultConfig returns a small balanced dataset configuration.
func DefaultConfig() Config {
	return Config{
		Actions:   20,
		Bins:      4,
		Seed:      1,
		LiftShare: 0.5,
		Noise:     0.05,
		Workers:   runtime.NumCPU(),
	}
}

func (c Config) validate() error {
	switch {
	case c.Actions < 0:
		return ErrInvalidConfig
	case c.Bins < 1:
		return ErrInvalidConfig
	case c.LiftShare < 0 || c.LiftShare > 1:
		return ErrInvalidConfig
	case c.Noise < 0:
		return ErrInvalidConfig
	}
	return nil
}
