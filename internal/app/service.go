// Package service wires the reference library, classifier, job queue and
// worker pool behind the operations the HTTP API and CLI need.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/motion/internal/adapters/ingest"
	jobqueue "github.com/okian/motion/internal/adapters/mq/queue"
	workerpool "github.com/okian/motion/internal/adapters/mq/worker"
	"github.com/okian/motion/internal/adapters/repository"
	"github.com/okian/motion/internal/adapters/watch"
	"github.com/okian/motion/internal/domain/classify"
	"github.com/okian/motion/internal/domain/dedupe"
	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
	"github.com/okian/motion/pkg/logger"
	"github.com/okian/motion/pkg/metrics"
)

const systemMetricsInterval = 10 * time.Second

// jobNamespace derives stable job ids from client request ids.
var jobNamespace = uuid.MustParse("6f1c2a52-7d0e-4c55-9a51-2f0c7e3d8b94")

// Service implements the API dependencies for the motion classifier.
type Service struct {
	mu sync.RWMutex

	// Core components
	lib        atomic.Pointer[library.Library]
	classifier classify.Classifier
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool
	jobs       *jobStore
	store      repository.Store
	ownsStore  bool
	watcher    *watch.FileWatcher

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	retention     int
	strictBins    bool
	dataFile      string
	dbPath        string
	watchDataFile bool

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration and an empty library.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10000,
		dedupeSize:  50000,
		retention:   10000,
		strictBins:  true,
		logger:      logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lib.Store(s.newLibrary())
	s.classifier = classify.WithMetrics(classify.New(s))
	s.jobs = newJobStore(s.retention)
	return s
}

func (s *Service) newLibrary() *library.Library {
	return library.New(library.WithStrictBins(s.strictBins))
}

// Start seeds the library and starts the job pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting motion service...")

	if s.store == nil && s.dbPath != "" {
		st, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open reference store: %w", err)
		}
		s.store = st
		s.ownsStore = true
	}
	if s.store != nil || s.dataFile != "" {
		if _, err := s.reload(ctx, s.store, s.dataFile); err != nil {
			s.closeStore()
			return err
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.jobQueue = q
	s.workerPool = workerpool.NewPool(s.workerCount, q, s.classifier, s.jobs,
		workerpool.WithLogger(s.logger))
	s.workerPool.Start(ctx)

	if s.watchDataFile && s.dataFile != "" {
		w, err := watch.New(s.dataFile, func(ctx context.Context, path string) error {
			_, err := s.ReloadFromFile(ctx, path)
			return err
		})
		if err != nil {
			return s.abortStart(ctx, err)
		}
		if err := w.Start(ctx); err != nil {
			return s.abortStart(ctx, err)
		}
		s.watcher = w
	}

	s.stopCh = make(chan struct{})
	go s.systemMetricsLoop(s.stopCh)

	s.started = true
	counts := s.Library().Counts()
	s.logger.Info(ctx, "motion service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("lifts", counts[model.LabelLift]),
		logger.Int("sweeps", counts[model.LabelSweep]),
		logger.Bool("watching", s.watcher != nil),
	)
	return nil
}

func (s *Service) abortStart(ctx context.Context, err error) error {
	_ = s.workerPool.Shutdown(ctx)
	s.closeStore()
	return fmt.Errorf("watch data file: %w", err)
}

func (s *Service) closeStore() {
	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
		s.store = nil
		s.ownsStore = false
	}
}

// Stop drains the job queue and releases resources.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping motion service...")

	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
		s.watcher = nil
	}
	if s.workerPool != nil {
		errs = append(errs, s.workerPool.Shutdown(ctx))
	}
	close(s.stopCh)
	s.closeStore()

	s.started = false
	s.logger.Info(ctx, "motion service stopped")
	return errors.Join(errs...)
}

// Library returns the library classifications currently run against.
func (s *Service) Library() *library.Library {
	return s.lib.Load()
}

// Snapshot implements classify.Source over the current library.
func (s *Service) Snapshot() library.Snapshot {
	return s.lib.Load().Snapshot()
}

// LoadLibrary appends the labeled records read from r to the current library
// and, when a store is configured, persists them. The batch is persisted before
// the live library sees it; when persisting fails nothing is added and the
// returned stats report no kept actions.
func (s *Service) LoadLibrary(ctx context.Context, r io.Reader) (ingest.Stats, error) {
	store := s.currentStore()
	batch := s.newLibrary()
	stats, err := s.loader().Load(ctx, r, batch)
	if err != nil {
		return stats, err
	}

	if store != nil {
		entries := make([]repository.Entry, 0, batch.Len())
		for label, action := range batch.All() {
			entries = append(entries, repository.Entry{Label: label, Action: action})
		}
		if _, err := store.Append(ctx, entries...); err != nil {
			stats.Lifts, stats.Sweeps = 0, 0
			return stats, fmt.Errorf("persist actions: %w", err)
		}
	}

	lib := s.Library()
	for label, action := range batch.All() {
		lib.Add(action, label.String())
	}
	s.publishLibrarySize(lib)
	return stats, nil
}

func (s *Service) loader() *ingest.Loader {
	return ingest.NewLoader(ingest.WithLogger(s.logger.Named("ingest")))
}

// ReloadFromFile rebuilds the library from the store plus the record file at
// path and swaps it in. Classifications already running keep the old library.
func (s *Service) ReloadFromFile(ctx context.Context, path string) (ingest.Stats, error) {
	return s.reload(ctx, s.currentStore(), path)
}

func (s *Service) currentStore() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

func (s *Service) reload(ctx context.Context, store repository.Store, path string) (ingest.Stats, error) {
	next := s.newLibrary()

	if store != nil {
		recs, err := store.All(ctx)
		if err != nil {
			metrics.RecordLibraryReload("error")
			return ingest.Stats{}, fmt.Errorf("load stored actions: %w", err)
		}
		for _, rec := range recs {
			next.Add(rec.Action, rec.Label.String())
		}
	}

	var stats ingest.Stats
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			metrics.RecordLibraryReload("error")
			return stats, fmt.Errorf("open data file: %w", err)
		}
		defer f.Close()
		stats, err = s.loader().Load(ctx, f, next)
		if err != nil {
			metrics.RecordLibraryReload("error")
			return stats, fmt.Errorf("load data file %s: %w", path, err)
		}
	}

	s.lib.Store(next)
	s.publishLibrarySize(next)
	metrics.RecordLibraryReload("ok")
	s.logger.Info(ctx, "library reloaded",
		logger.String("file", path),
		logger.Int("actions", next.Len()),
	)
	return stats, nil
}

func (s *Service) publishLibrarySize(lib *library.Library) {
	counts := lib.Counts()
	for _, label := range model.Labels() {
		metrics.UpdateLibrarySize(label.String(), counts[label])
	}
}

// Classify labels action synchronously.
func (s *Service) Classify(ctx context.Context, action model.Action) (types.Classification, error) {
	res, err := s.classifier.Classify(ctx, action)
	if err != nil {
		s.logger.Error(ctx, "classification failed", logger.Error(err))
		return types.Classification{}, err
	}
	return toClassification(res, shapeOf(action)), nil
}

// Submit queues action for asynchronous classification. A non-empty requestID
// makes the submission idempotent: repeating it returns the original job id
// with duplicate set.
func (s *Service) Submit(ctx context.Context, requestID string, action model.Action) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", false, ErrNotStarted
	}

	jobID := uuid.NewString()
	if requestID != "" {
		jobID = uuid.NewSHA1(jobNamespace, []byte(requestID)).String()
		if s.deduper.SeenAndRecord(ctx, requestID) {
			metrics.RecordJobDuplicate()
			return jobID, true, nil
		}
	}

	if !s.jobs.add(jobID, requestID, action) {
		// evicted from the deduper but the job is still held
		metrics.RecordJobDuplicate()
		return jobID, true, nil
	}
	err := s.jobQueue.Enqueue(ctx, jobqueue.Job{ID: jobID, RequestID: requestID, Action: action})
	if err != nil {
		s.jobs.remove(jobID)
		if requestID != "" {
			s.deduper.Unrecord(ctx, requestID)
		}
		if errors.Is(err, jobqueue.ErrFull) {
			return "", false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return "", false, err
	}
	return jobID, false, nil
}

// Job returns the current state of a job.
func (s *Service) Job(_ context.Context, jobID string) (types.Job, error) {
	job, ok := s.jobs.get(jobID)
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job, nil
}

// Wait blocks until the job finishes or ctx is done.
func (s *Service) Wait(ctx context.Context, jobID string) (types.Job, error) {
	job, ok, err := s.jobs.wait(ctx, jobID)
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := s.Library().Counts()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"strictBins":  s.strictBins,
		"library": types.LibraryCounts{
			Lifts:  counts[model.LabelLift],
			Sweeps: counts[model.LabelSweep],
		},
		"jobs": s.jobs.counts(),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len()
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}

// systemMetricsLoop refreshes the runtime gauges until stop is closed.
func (s *Service) systemMetricsLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	var lastNumGC uint32
	for {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		metrics.UpdateSystemMemoryUsage(ms.HeapAlloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		if ms.NumGC > lastNumGC {
			// most recent pause only
			pause := ms.PauseNs[(ms.NumGC+255)%256]
			metrics.RecordSystemGCPauseTime(float64(pause) / float64(time.Millisecond))
			lastNumGC = ms.NumGC
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
