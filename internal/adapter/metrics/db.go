package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DBMetrics tracks Postgres queries.
type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
	ErrorsTotal   *prometheus.CounterVec
}

func NewDBMetrics(reg prometheus.Registerer) *DBMetrics {
	m := &DBMetrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds, by statement kind.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"query"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total failed database queries, by statement kind.",
		}, []string{"query"}),
	}

	reg.MustRegister(m.QueryDuration, m.ErrorsTotal)
	return m
}

func (m *DBMetrics) QueryDone(query string, failed bool, elapsed time.Duration) {
	m.QueryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
	if failed {
		m.ErrorsTotal.WithLabelValues(query).Inc()
	}
}
