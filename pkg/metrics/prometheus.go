// Package metrics provides Prometheus metrics for the motion classifier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	recordsIngested  *prometheus.CounterVec
	recordsDiscarded *prometheus.CounterVec
	librarySize      *prometheus.GaugeVec
	libraryReloads   *prometheus.CounterVec

	// Classification
	classifications       *prometheus.CounterVec
	classificationLatency prometheus.Histogram
	votes                 *prometheus.CounterVec
	classificationErrors  *prometheus.CounterVec
	jobsDuplicate         prometheus.Counter

	// Queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "motion",
		subsystem:        "classifier",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounterVec(
		m.counterOpts("records_ingested_total", "Reference records added to the library"),
		[]string{"label"},
	)
	m.recordsDiscarded = auto.NewCounterVec(
		m.counterOpts("records_discarded_total", "Records skipped during ingestion"),
		[]string{"reason"},
	)
	m.librarySize = auto.NewGaugeVec(
		m.gaugeOpts("library_actions", "Reference actions currently held per label"),
		[]string{"label"},
	)
	m.libraryReloads = auto.NewCounterVec(
		m.counterOpts("library_reloads_total", "Library reloads from the data file"),
		[]string{"result"},
	)

	m.classifications = auto.NewCounterVec(
		m.counterOpts("classifications_total", "Actions classified by resulting label"),
		[]string{"label"},
	)
	m.classificationLatency = auto.NewHistogram(
		m.histogramOpts("classification_latency_milliseconds", "Time to classify one action", m.histogramBuckets),
	)
	m.votes = auto.NewCounterVec(
		m.counterOpts("votes_total", "Per-coordinate votes cast by label"),
		[]string{"label"},
	)
	m.classificationErrors = auto.NewCounterVec(
		m.counterOpts("classification_errors_total", "Failed classifications by kind"),
		[]string{"kind"},
	)
	m.jobsDuplicate = auto.NewCounter(
		m.counterOpts("jobs_duplicate_total", "Job submissions rejected as duplicates"),
	)

	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum job queue capacity"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the queue"))
	m.queueEnqueue = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeue = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs refused by the queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running classification workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker time per job", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed in a worker"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// Ingestion.

// RecordIngested counts a reference record added under label.
func RecordIngested(label string) {
	globalManager.recordsIngested.WithLabelValues(label).Inc()
}

// RecordDiscarded counts a record skipped for reason.
func RecordDiscarded(reason string) {
	globalManager.recordsDiscarded.WithLabelValues(reason).Inc()
}

// UpdateLibrarySize sets the number of reference actions held under label.
func UpdateLibrarySize(label string, count int) {
	globalManager.librarySize.WithLabelValues(label).Set(float64(count))
}

// RecordLibraryReload counts a reload attempt; result is "ok" or "error".
func RecordLibraryReload(result string) {
	globalManager.libraryReloads.WithLabelValues(result).Inc()
}

// Classification.

// RecordClassification counts a finished classification and its latency.
func RecordClassification(label string, latencyMs float64) {
	globalManager.classifications.WithLabelValues(label).Inc()
	globalManager.classificationLatency.Observe(latencyMs)
}

// RecordVotes adds count votes for label.
func RecordVotes(label string, count int) {
	globalManager.votes.WithLabelValues(label).Add(float64(count))
}

// RecordClassificationError counts a failed classification.
func RecordClassificationError(kind string) {
	globalManager.classificationErrors.WithLabelValues(kind).Inc()
}

// RecordJobDuplicate counts a duplicate job submission.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// Queue.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker.

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
