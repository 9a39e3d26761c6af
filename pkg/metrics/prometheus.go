// Package metrics provides Prometheus metrics for the peer-evaluation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the pipeline metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	rowsRead        prometheus.Counter
	overrides       prometheus.Counter
	buildLatency    prometheus.Histogram
	computeLatency  prometheus.Histogram
	pipelineErrors  *prometheus.CounterVec
	teamsLastRun    prometheus.Gauge
	studentsLastRun prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Report store
	reportsStored prometheus.Gauge
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
		namespace:        "epp",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_read_total",
		Help:      "Total number of export rows grouped into hierarchies",
	})

	m.overrides = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overrides_total",
		Help:      "Total number of rows carrying a manually overridden note",
	})

	m.buildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "build_latency_milliseconds",
		Help:      "Time spent grouping rows into a hierarchy",
		Buckets:   m.histogramBuckets,
	})

	m.computeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_latency_milliseconds",
		Help:      "Time spent scoring a built hierarchy",
		Buckets:   m.histogramBuckets,
	})

	m.pipelineErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Pipeline failures by stage and kind",
	}, []string{"stage", "kind"})

	m.teamsLastRun = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams",
		Help:      "Number of teams in the last scored cohort",
	})

	m.studentsLastRun = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluated_students",
		Help:      "Number of evaluated students in the last scored cohort",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.reportsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "reports",
		Help:      "Number of scored reports held in memory",
	})
}

// RecordRowsRead adds n grouped rows.
func RecordRowsRead(n int) {
	globalManager.rowsRead.Add(float64(n))
}

// RecordOverrides adds n override rows.
func RecordOverrides(n int) {
	globalManager.overrides.Add(float64(n))
}

// RecordBuildLatency records hierarchy build time in milliseconds.
func RecordBuildLatency(latencyMs float64) {
	globalManager.buildLatency.Observe(latencyMs)
}

// RecordComputeLatency records scoring time in milliseconds.
func RecordComputeLatency(latencyMs float64) {
	globalManager.computeLatency.Observe(latencyMs)
}

// RecordPipelineError counts a failure of the given stage and kind.
func RecordPipelineError(stage, kind string) {
	globalManager.pipelineErrors.WithLabelValues(stage, kind).Inc()
}

// UpdateCohortSize sets the size of the last scored cohort.
func UpdateCohortSize(teams, students int) {
	globalManager.teamsLastRun.Set(float64(teams))
	globalManager.studentsLastRun.Set(float64(students))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateReportsStored sets the number of stored reports.
func UpdateReportsStored(n int) {
	globalManager.reportsStored.Set(float64(n))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
