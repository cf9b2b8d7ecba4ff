package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for verdict cache performance.
type CacheMetrics struct {
	Hits    *prometheus.CounterVec
	Misses  *prometheus.CounterVec
	Entries prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verdict_cache",
			Name:      "hits_total",
			Help:      "Total number of verdict cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verdict_cache",
			Name:      "misses_total",
			Help:      "Total number of verdict cache misses, by layer.",
		}, []string{"layer"}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "verdict_cache",
			Name:      "memory_entries",
			Help:      "Number of verdicts held in the in-memory layer.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Entries)
	return m
}

func (m *CacheMetrics) Hit(layer string)  { m.Hits.WithLabelValues(layer).Inc() }
func (m *CacheMetrics) Miss(layer string) { m.Misses.WithLabelValues(layer).Inc() }

func (m *CacheMetrics) MemoryEntries(n int) { m.Entries.Set(float64(n)) }
