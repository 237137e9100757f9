package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Derivation outcomes used as the "outcome" label.
const (
	OutcomeAll  = "all"  // no department filter
	OutcomeHit  = "hit"  // filter matched at least one record
	OutcomeMiss = "miss" // filter matched nothing
)

// Manager owns every Prometheus collector of the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Dataset
	datasetRows        prometheus.Gauge
	datasetDepartments prometheus.Gauge
	datasetJobRoles    prometheus.Gauge
	datasetLoadLatency prometheus.Histogram
	datasetLoadErrors  *prometheus.CounterVec

	// Views
	viewDerivations       *prometheus.CounterVec
	viewDerivationLatency prometheus.Histogram
	viewCoalesced         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

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
		namespace:        "attrition",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Number of employee records loaded"))
	m.datasetDepartments = auto.NewGauge(m.gaugeOpts("dataset_departments", "Number of distinct departments"))
	m.datasetJobRoles = auto.NewGauge(m.gaugeOpts("dataset_job_roles", "Number of distinct job roles"))
	m.datasetLoadLatency = auto.NewHistogram(m.histogramOpts(
		"dataset_load_latency_milliseconds", "Time spent reading and parsing the dataset", m.histogramBuckets))
	m.datasetLoadErrors = auto.NewCounterVec(m.counterOpts(
		"dataset_load_errors_total", "Dataset load failures by kind"), []string{"kind"})

	m.viewDerivations = auto.NewCounterVec(m.counterOpts(
		"view_derivations_total", "View derivations by filter outcome"), []string{"outcome"})
	m.viewDerivationLatency = auto.NewHistogram(m.histogramOpts(
		"view_derivation_latency_milliseconds", "Time spent deriving the three views", m.histogramBuckets))
	m.viewCoalesced = auto.NewCounter(m.counterOpts(
		"view_coalesced_total", "Derivations answered by an identical in-flight request"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(m.counterOpts(
		"errors_by_type_total", "Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Dataset metrics.

// UpdateDatasetSize publishes the shape of the loaded dataset.
func UpdateDatasetSize(rows, departments, jobRoles int) {
	globalManager.datasetRows.Set(float64(rows))
	globalManager.datasetDepartments.Set(float64(departments))
	globalManager.datasetJobRoles.Set(float64(jobRoles))
}

// RecordDatasetLoadLatency records how long a successful load took.
func RecordDatasetLoadLatency(latencyMs float64) {
	globalManager.datasetLoadLatency.Observe(latencyMs)
}

// RecordDatasetLoadError counts a failed load by kind, e.g. "not_found".
func RecordDatasetLoadError(kind string) {
	globalManager.datasetLoadErrors.WithLabelValues(kind).Inc()
}

// View metrics.

// RecordViewDerivation counts one derivation and its latency.
func RecordViewDerivation(outcome string, latencyMs float64) {
	globalManager.viewDerivations.WithLabelValues(outcome).Inc()
	globalManager.viewDerivationLatency.Observe(latencyMs)
}

// RecordViewCoalesced counts a request served from a shared in-flight derivation.
func RecordViewCoalesced() {
	globalManager.viewCoalesced.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
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
