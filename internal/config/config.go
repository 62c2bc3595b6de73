// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"runtime"
)

// Default sizes.
const (
	defaultQueueSize       = 10_000
	defaultDedupeSize      = 50_000
	defaultMaxBodyBytes    = 4 << 20
	defaultResultRetention = 10_000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataFile is a text record file loaded into the reference library at start.
	DataFile string `koanf:"data_file"`

	// DBPath is a SQLite database of stored reference actions. Empty disables it.
	DBPath string `koanf:"db_path"`

	// WorkerCount sets the number of classification workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the number of remembered job request ids.
	DedupeSize int `koanf:"dedupe_size"`

	// StrictBins rejects reference records whose sample count is not a
	// multiple of the joints per bin.
	StrictBins bool `koanf:"strict_bins"`

	// WatchDataFile reloads the library when DataFile changes on disk.
	WatchDataFile bool `koanf:"watch_data_file"`

	// MaxBodyBytes caps HTTP request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ResultRetention bounds the number of finished jobs kept for lookup.
	ResultRetention int `koanf:"result_retention"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		WorkerCount:     runtime.NumCPU() * 2,
		QueueSize:       defaultQueueSize,
		DedupeSize:      defaultDedupeSize,
		StrictBins:      true,
		MaxBodyBytes:    defaultMaxBodyBytes,
		ResultRetention: defaultResultRetention,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	if c.WatchDataFile && c.DataFile == "" {
		return fmt.Errorf("%w: watch_data_file needs data_file", ErrInvalidConfig)
	}
	return nil
}
