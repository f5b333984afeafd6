// Package metrics provides Prometheus metrics for the PCBValues service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results recorded by RecordSubmission.
const (
	SubmissionAccepted  = "accepted"
	SubmissionConfirm   = "confirm"
	SubmissionDuplicate = "duplicate"
	SubmissionRejected  = "rejected"
	SubmissionFailed    = "failed"
)

// Import results recorded by RecordImport.
const (
	ImportApplied = "applied"
	ImportSkipped = "skipped"
	ImportFailed  = "failed"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Quiz business metrics
	submissions    *prometheus.CounterVec
	overrides      prometheus.Counter
	digestMismatch prometheus.Counter
	rankLatency    prometheus.Histogram
	rankPopulation prometheus.Gauge
	imports        *prometheus.CounterVec

	// Store metrics
	storeRecords prometheus.Gauge
	storeLatency *prometheus.HistogramVec

	// Queue metrics
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// Worker metrics
	workerActive     prometheus.Gauge
	workerRate       prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrors     prometheus.Counter
	workerDuplicates prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System metrics
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pcbvalues",
		subsystem:        "quiz",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts(m.opts(name, help)))
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts(m.opts(name, help)))
	}

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"submissions_total", "Score submissions by result")), []string{"result"})
	m.overrides = counter("overrides_total", "Submissions that replaced an existing name after confirmation")
	m.digestMismatch = counter("digest_mismatch_total", "Submissions whose digest did not match the score")
	m.rankLatency = auto.NewHistogram(m.histogramOpts("rank_latency_milliseconds", "Match ranking latency in milliseconds"))
	m.rankPopulation = gauge("rank_population", "Population size of the last ranking")
	m.imports = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"imports_total", "Imported payloads by result")), []string{"result"})

	m.storeRecords = gauge("store_records", "Records in the score store")
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts(
		"store_latency_milliseconds", "Score store latency in milliseconds by operation"), []string{"op"})

	m.queueCapacity = gauge("queue_capacity", "Import queue capacity")
	m.queueSize = gauge("queue_size", "Import queue length")
	m.queueUtilization = gauge("queue_utilization_ratio", "Import queue length over capacity")
	m.queueEnqueued = counter("queue_enqueued_total", "Jobs enqueued")
	m.queueDequeued = counter("queue_dequeued_total", "Jobs dequeued")
	m.queueEnqueueErrs = counter("queue_enqueue_errors_total", "Jobs rejected by the queue")

	m.workerActive = gauge("worker_active", "Running import workers")
	m.workerRate = gauge("worker_jobs_per_second", "Average jobs processed per second")
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_latency_milliseconds", "Import job latency in milliseconds"))
	m.workerErrors = counter("worker_errors_total", "Import jobs that failed")
	m.workerDuplicates = counter("worker_duplicates_total", "Import jobs skipped as replays")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"http_requests_total", "HTTP requests by endpoint, method and status")),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"errors_by_component_total", "Errors by component and type")), []string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"errors_by_type_total", "Errors by type and severity")), []string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts(m.opts(
		"errors_by_endpoint_total", "Errors by endpoint, method and type")), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of failed operations in milliseconds"), []string{"component", "error_type"})

	m.systemMemory = gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutines = gauge("system_goroutines", "Running goroutines")
	m.systemGCPause = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds"))
}

// RecordSubmission counts a submission outcome.
func RecordSubmission(result string) { globalManager.submissions.WithLabelValues(result).Inc() }

// RecordOverride counts a confirmed overwrite of an existing name.
func RecordOverride() { globalManager.overrides.Inc() }

// RecordDigestMismatch counts a rejected tampered submission.
func RecordDigestMismatch() { globalManager.digestMismatch.Inc() }

// RecordRankLatency observes one ranking.
func RecordRankLatency(latencyMs float64) { globalManager.rankLatency.Observe(latencyMs) }

// UpdateRankPopulation sets the population size of the last ranking.
func UpdateRankPopulation(n int) { globalManager.rankPopulation.Set(float64(n)) }

// RecordImport counts an imported payload outcome.
func RecordImport(result string) { globalManager.imports.WithLabelValues(result).Inc() }

// UpdateStoreRecords sets the number of stored records.
func UpdateStoreRecords(n int) { globalManager.storeRecords.Set(float64(n)) }

// RecordStoreLatency observes one store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueSize sets the queue length and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a delivered job.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrs.Inc() }

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(n int) { globalManager.workerActive.Set(float64(n)) }

// UpdateWorkerJobsPerSecond sets the average processing rate.
func UpdateWorkerJobsPerSecond(rate float64) { globalManager.workerRate.Set(rate) }

// RecordWorkerLatency observes one processed job.
func RecordWorkerLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordWorkerDuplicate counts a job skipped as a replay.
func RecordWorkerDuplicate() { globalManager.workerDuplicates.Inc() }

// RecordHTTPRequest counts one request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemory.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutines.Set(float64(n)) }

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPause.Observe(pauseMs) }

// GetRegistry returns the registry served by /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
