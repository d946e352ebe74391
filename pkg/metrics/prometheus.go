// Package metrics provides Prometheus metrics for the cadence analysis
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingestion metrics
	transactionsLoaded     prometheus.Counter
	transactionsNormalized prometheus.Counter
	duplicatesCollapsed    prometheus.Counter
	ledgerErrors           prometheus.Counter

	// Analysis metrics
	subgroupRuns         prometheus.Counter
	subgroupsSkipped     prometheus.Counter
	accountsEstimated    prometheus.Counter
	estimatorSkips       prometheus.Counter
	runDuration          prometheus.Histogram
	estimationLatency    prometheus.Histogram
	accountsTracked      prometheus.Gauge
	seriesBucketsEmitted prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cadence",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.transactionsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transactions_loaded_total",
		Help:      "Total number of raw ledger rows loaded from gateways",
	})
	m.transactionsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transactions_normalized_total",
		Help:      "Total number of transactions surviving per-(account,day) collapse",
	})
	m.duplicatesCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicates_collapsed_total",
		Help:      "Total number of duplicate same-account same-day rows folded away",
	})
	m.ledgerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_errors_total",
		Help:      "Total number of ledger load failures",
	})

	m.subgroupRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subgroup_runs_total",
		Help:      "Total number of subgroup analyses completed",
	})
	m.subgroupsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subgroups_skipped_total",
		Help:      "Total number of subgroups skipped because no transaction matched",
	})
	m.accountsEstimated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "accounts_estimated_total",
		Help:      "Total number of accounts with a defined dominant period",
	})
	m.estimatorSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimator_skips_total",
		Help:      "Total number of accounts omitted for insufficient history",
	})
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of full analysis run durations",
		Buckets:   m.histogramBuckets,
	})
	m.estimationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimation_latency_seconds",
		Help:      "Histogram of per-account spectral estimation latency",
		Buckets:   m.histogramBuckets,
	})
	m.accountsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "accounts_tracked",
		Help:      "Number of distinct accounts in the current ledger",
	})
	m.seriesBucketsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "series_buckets_emitted_total",
		Help:      "Total number of calendar buckets emitted across all series",
	})
}

// Handler exposes the custom registry for the optional /metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
