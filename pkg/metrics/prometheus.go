// Package metrics provides Prometheus metrics for the teacher evaluation service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels accepted by RecordCatalogLoad.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Catalog ingestion
	catalogLoads        *prometheus.CounterVec
	catalogLoadDuration prometheus.Histogram
	catalogLastLoadUnix prometheus.Gauge
	evaluationsLoaded   prometheus.Gauge
	questionsLoaded     prometheus.Gauge
	teachersLoaded      prometheus.Gauge
	rowsSkipped         *prometheus.CounterVec
	duplicatesDropped   prometheus.Counter

	// Calculations
	calculationLatency *prometheus.HistogramVec
	calculationErrors  *prometheus.CounterVec

	// Reports and the render queue
	reportsRendered         prometheus.Counter
	reportErrors            prometheus.Counter
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teacheval",
		subsystem:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.catalogLoads = auto.NewCounterVec(m.counter("loads_total", "Catalog load attempts by outcome"), []string{"outcome"})
	m.catalogLoadDuration = auto.NewHistogram(m.histogram("load_duration_milliseconds",
		"Catalog load duration in milliseconds", []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}))
	m.catalogLastLoadUnix = auto.NewGauge(m.gauge("last_load_unix", "Unix timestamp of the last published catalog"))
	m.evaluationsLoaded = auto.NewGauge(m.gauge("evaluations", "Evaluations in the current catalog"))
	m.questionsLoaded = auto.NewGauge(m.gauge("questions", "Questions in the current catalog"))
	m.teachersLoaded = auto.NewGauge(m.gauge("teachers", "Distinct teachers in the current catalog"))
	m.rowsSkipped = auto.NewCounterVec(m.counter("rows_skipped_total", "Source rows skipped during ingestion"), []string{"kind"})
	m.duplicatesDropped = auto.NewCounter(m.counter("duplicate_evaluations_total", "Evaluations dropped because their id was already indexed"))

	m.calculationLatency = auto.NewHistogramVec(m.histogram("calculation_latency_milliseconds",
		"Latency of statistics calculations in milliseconds", m.histogramBuckets), []string{"operation"})
	m.calculationErrors = auto.NewCounterVec(m.counter("calculation_errors_total", "Failed statistics calculations"), []string{"operation"})

	m.reportsRendered = auto.NewCounter(m.counter("reports_rendered_total", "Teacher reports rendered"))
	m.reportErrors = auto.NewCounter(m.counter("report_errors_total", "Teacher reports that failed to render"))
	m.queueSize = auto.NewGauge(m.gauge("report_queue_size", "Report jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("report_queue_capacity", "Maximum report queue capacity"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("report_queue_rejections_total", "Report jobs rejected by a full queue"))
	m.workerCount = auto.NewGauge(m.gauge("report_workers", "Report workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("report_render_latency_milliseconds",
		"Time a worker spends rendering one report", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordCatalogLoad records one load attempt and its duration.
func RecordCatalogLoad(outcome string, durationMs float64) error {
	if outcome != OutcomeSuccess && outcome != OutcomeFailure {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.catalogLoads.WithLabelValues(outcome).Inc()
	globalManager.catalogLoadDuration.Observe(durationMs)
	return nil
}

// UpdateCatalogSize publishes the size of the catalog that was just swapped in.
func UpdateCatalogSize(evaluations, questions, teachers int, loadedUnix int64) {
	globalManager.evaluationsLoaded.Set(float64(evaluations))
	globalManager.questionsLoaded.Set(float64(questions))
	globalManager.teachersLoaded.Set(float64(teachers))
	globalManager.catalogLastLoadUnix.Set(float64(loadedUnix))
}

// RecordRowsSkipped adds n skipped rows of the given kind (question, evaluation).
func RecordRowsSkipped(kind string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsSkipped.WithLabelValues(kind).Add(float64(n))
}

// RecordDuplicatesDropped adds n evaluations dropped by id.
func RecordDuplicatesDropped(n int) {
	if n <= 0 {
		return
	}
	globalManager.duplicatesDropped.Add(float64(n))
}

// RecordCalculationLatency records a calculation latency in milliseconds.
func RecordCalculationLatency(operation string, latencyMs float64) {
	globalManager.calculationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordCalculationError increments failed calculations for operation.
func RecordCalculationError(operation string) {
	globalManager.calculationErrors.WithLabelValues(operation).Inc()
}

// RecordReportRendered increments the rendered reports counter.
func RecordReportRendered() {
	globalManager.reportsRendered.Inc()
}

// RecordReportError increments the failed reports counter.
func RecordReportError() {
	globalManager.reportErrors.Inc()
}

// UpdateQueueSize sets the current report queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the report queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments rejected enqueues.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running report workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records how long one render took.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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
