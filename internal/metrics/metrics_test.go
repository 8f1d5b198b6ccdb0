package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/philosophy/internal/metrics"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

var _ pathfinder.Observer = (*metrics.Metrics)(nil)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.ObserveTraversal("success", 4, 0.2)
	m.ObserveTraversal("success", 2, 0.1)
	m.ObserveTraversal("loop", 7, 0.5)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveCacheFlush(nil)
	m.ObserveCacheFlush(errors.New("disk full"))
	m.ObserveCircuit("open")

	assert.InDelta(t, 2, testutil.ToFloat64(m.TraversalsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TraversalsTotal.WithLabelValues("loop")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheFlushes.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceCircuitOpen), 0)

	m.ObserveCircuit("closed")
	assert.InDelta(t, 0, testutil.ToFloat64(m.SourceCircuitOpen), 0)
}

func TestRegisterCacheSize(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	size := 3
	metrics.RegisterCacheSize(reg, func() int { return size })

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "wikipath_cache_entries", families[0].GetName())
	assert.InDelta(t, 3, families[0].GetMetric()[0].GetGauge().GetValue(), 0)
}
