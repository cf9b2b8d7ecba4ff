package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RedisMetrics tracks Redis commands and the Redis circuit breaker.
type RedisMetrics struct {
	OpsTotal            *prometheus.CounterVec
	OpDuration          *prometheus.HistogramVec
	ConnectionErrors    prometheus.Counter
	BreakerStateChanges *prometheus.CounterVec
	BreakerState        prometheus.Gauge
}

func NewRedisMetrics(reg prometheus.Registerer) *RedisMetrics {
	m := &RedisMetrics{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total Redis operations by operation and status.",
		}, []string{"operation", "status"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Redis operation duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		ConnectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total Redis connection errors.",
		}),
		BreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Redis circuit breaker transitions by new state.",
		}, []string{"state"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state",
			Help:      "Current Redis circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(m.OpsTotal, m.OpDuration, m.ConnectionErrors, m.BreakerStateChanges, m.BreakerState)
	return m
}

func (m *RedisMetrics) CommandDone(operation string, failed bool, elapsed time.Duration) {
	status := "success"
	if failed {
		status = "error"
	}
	m.OpsTotal.WithLabelValues(operation, status).Inc()
	m.OpDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *RedisMetrics) DialFailed() { m.ConnectionErrors.Inc() }

func (m *RedisMetrics) BreakerStateChanged(state string, value float64) {
	m.BreakerStateChanges.WithLabelValues(state).Inc()
	m.BreakerState.Set(value)
}
