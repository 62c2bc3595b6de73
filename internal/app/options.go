package service

import (
	"github.com/okian/motion/internal/adapters/repository"
	"github.com/okian/motion/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithResultRetention sets how many finished jobs are kept for lookup.
// Pending jobs are never evicted.
func WithResultRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithStrictBins rejects reference records that do not fill whole bins.
func WithStrictBins(strict bool) Option {
	return func(s *Service) {
		s.strictBins = strict
	}
}

// WithDataFile loads reference records from path at start.
func WithDataFile(path string) Option {
	return func(s *Service) {
		s.dataFile = path
	}
}

// WithWatchDataFile reloads the library when the data file changes.
func WithWatchDataFile(watch bool) Option {
	return func(s *Service) {
		s.watchDataFile = watch
	}
}

// WithDBPath opens a SQLite reference store at path during Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithStore uses an already opened reference store. The caller keeps
// ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
