// Package watch reloads the reference library when its data file changes.
package watch

import (
	"time"

	"github.com/okian/motion/pkg/logger"
)

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets how long the file must stay quiet before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.log = l
		}
	}
}
