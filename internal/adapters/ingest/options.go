// Package ingest turns text records into labeled actions.
package ingest

import "github.com/okian/motion/pkg/logger"

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for per-record diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
