// Package metrics provides Prometheus metrics for the vidmatch batch matcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes used as label values.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

// Query results used as label values.
const (
	QueryOK        = "ok"
	QueryEmpty     = "empty"
	QueryTimeout   = "timeout"
	QueryCancelled = "cancelled"
	QueryError     = "error"
)

// Manager manages all Prometheus metrics for the matcher.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Record pipeline
	recordsProcessed  *prometheus.CounterVec
	recordLatency     prometheus.Histogram
	candidatesScored  prometheus.Counter
	candidatesDeduped prometheus.Counter
	matchesPersisted  prometheus.Counter

	// Search provider
	queries      *prometheus.CounterVec
	queryLatency prometheus.Histogram

	// Result sink
	sinkWriteLatency prometheus.Histogram
	sinkErrors       prometheus.Counter

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge
	workersBusy   prometheus.Gauge
	recordsTotal  prometheus.Gauge

	// Status server
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Default latency buckets, in seconds. Provider calls are bounded by the
// query timeout, so the upper buckets stretch to a minute.
var defaultBuckets = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 20, 45, 60} //nolint:gochecknoglobals // read-only defaults

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vidmatch",
		subsystem:        "matcher",
		histogramBuckets: defaultBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recordsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_processed_total",
		Help:        "Catalog records processed, by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.recordLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "record_duration_seconds",
		Help:        "Wall time spent on one record's full query fanout",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.candidatesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_scored_total",
		Help:        "Candidates returned by the provider and scored",
		ConstLabels: m.constLabels,
	})

	m.candidatesDeduped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_duplicate_total",
		Help:        "Candidates dropped because an earlier query returned the same id",
		ConstLabels: m.constLabels,
	})

	m.matchesPersisted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_persisted_total",
		Help:        "Match records appended to the result sink",
		ConstLabels: m.constLabels,
	})

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "search_queries_total",
		Help:        "Search provider calls, by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.queryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "search_query_duration_seconds",
		Help:        "Search provider call latency",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.sinkWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_write_duration_seconds",
		Help:        "Time holding the sink lock for one append including fsync",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.sinkErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_errors_total",
		Help:        "Failed appends to the result sink",
		ConstLabels: m.constLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Records waiting for a worker",
		ConstLabels: m.constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum number of records the queue holds",
		ConstLabels: m.constLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Configured worker pool size",
		ConstLabels: m.constLabels,
	})

	m.workersBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "workers_busy",
		Help:        "Workers currently processing a record",
		ConstLabels: m.constLabels,
	})

	m.recordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_total",
		Help:        "Catalog records loaded for this run",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Status server requests, by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status"})

	m.httpLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "Status server request latency",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method"})
}

// RecordRecordProcessed counts one finished record with its outcome.
func RecordRecordProcessed(outcome string, seconds float64) {
	globalManager.recordsProcessed.WithLabelValues(outcome).Inc()
	globalManager.recordLatency.Observe(seconds)
}

// RecordCandidateScored counts one scored candidate.
func RecordCandidateScored() {
	globalManager.candidatesScored.Inc()
}

// RecordCandidateDuplicate counts one candidate dropped by dedupe.
func RecordCandidateDuplicate() {
	globalManager.candidatesDeduped.Inc()
}

// RecordMatchPersisted counts one appended match record.
func RecordMatchPersisted() {
	globalManager.matchesPersisted.Inc()
}

// RecordQuery counts one provider call and its latency.
func RecordQuery(result string, seconds float64) {
	globalManager.queries.WithLabelValues(result).Inc()
	globalManager.queryLatency.Observe(seconds)
}

// RecordSinkWrite records the latency of one sink append.
func RecordSinkWrite(seconds float64) {
	globalManager.sinkWriteLatency.Observe(seconds)
}

// RecordSinkError counts one failed sink append.
func RecordSinkError() {
	globalManager.sinkErrors.Inc()
}

// UpdateQueueSize sets the number of queued records.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the configured pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// WorkerBusy adjusts the busy worker gauge by delta.
func WorkerBusy(delta int) {
	globalManager.workersBusy.Add(float64(delta))
}

// UpdateRecordsTotal sets the number of records loaded for the run.
func UpdateRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// RecordHTTPRequest counts one status server request and its latency.
func RecordHTTPRequest(endpoint, method, status string, seconds float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	globalManager.httpLatency.WithLabelValues(endpoint, method).Observe(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
