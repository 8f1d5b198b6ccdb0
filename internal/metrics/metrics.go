// Package metrics exports traversal and cache telemetry to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace prefixes every metric this service exports.
	Namespace = "wikipath"

	lookupHit   = "hit"
	lookupMiss  = "miss"
	flushOK     = "ok"
	flushFailed = "error"
)

// Metrics implements pathfinder.Observer on top of Prometheus collectors.
type Metrics struct {
	TraversalsTotal   *prometheus.CounterVec
	TraversalHops     prometheus.Histogram
	TraversalDuration prometheus.Histogram
	CacheLookups      *prometheus.CounterVec
	CacheFlushes      *prometheus.CounterVec
	SourceCircuitOpen prometheus.Gauge
}

// NewMetrics creates and registers the collectors. A nil registerer uses
// the Prometheus default.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{}

	m.initTraversalMetrics(factory)
	m.initCacheMetrics(factory)

	m.SourceCircuitOpen = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "source",
		Name:      "circuit_open",
		Help:      "1 while the article source circuit breaker is not closed",
	})

	return m
}

func (m *Metrics) initTraversalMetrics(factory promauto.Factory) {
	m.TraversalsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "traversal",
			Name:      "total",
			Help:      "Traversals by outcome",
		},
		[]string{"outcome"},
	)

	m.TraversalHops = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "traversal",
		Name:      "hops",
		Help:      "Links followed per traversal",
		Buckets:   prometheus.LinearBuckets(0, 5, 21), // 0 to 100
	})

	m.TraversalDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "traversal",
		Name:      "duration_seconds",
		Help:      "Wall time per traversal in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	})
}

func (m *Metrics) initCacheMetrics(factory promauto.Factory) {
	m.CacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Path cache lookups by result",
		},
		[]string{"result"},
	)

	m.CacheFlushes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cache",
			Name:      "flushes_total",
			Help:      "Path cache flushes by status",
		},
		[]string{"status"},
	)
}

// RegisterCacheSize exports the current number of cached paths.
func RegisterCacheSize(reg prometheus.Registerer, size func() int) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Number of titles with a cached path",
	}, func() float64 { return float64(size()) })
}

// ObserveTraversal records one finished traversal.
func (m *Metrics) ObserveTraversal(outcome string, hops int, seconds float64) {
	m.TraversalsTotal.WithLabelValues(outcome).Inc()
	m.TraversalHops.Observe(float64(hops))
	m.TraversalDuration.Observe(seconds)
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := lookupMiss
	if hit {
		result = lookupHit
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheFlush records the result of persisting the cache.
func (m *Metrics) ObserveCacheFlush(err error) {
	status := flushOK
	if err != nil {
		status = flushFailed
	}
	m.CacheFlushes.WithLabelValues(status).Inc()
}

// ObserveCircuit records the article source circuit state by name.
func (m *Metrics) ObserveCircuit(state string) {
	if state == "closed" {
		m.SourceCircuitOpen.Set(0)
		return
	}
	m.SourceCircuitOpen.Set(1)
}
