package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClassifierMetrics tracks classifier calls. It satisfies classifier.Recorder.
type ClassifierMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BreakerState    prometheus.Gauge
}

func NewClassifierMetrics(reg prometheus.Registerer) *ClassifierMetrics {
	m := &ClassifierMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "requests_total",
			Help:      "Total number of classification attempts, by backend and result.",
		}, []string{"backend", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "duration_seconds",
			Help:      "Duration of classification attempts in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"backend"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "circuit_breaker_state",
			Help:      "Inference client circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(m.Requests, m.RequestDuration, m.BreakerState)
	return m
}

func (m *ClassifierMetrics) ObserveRequest(backend, result string, elapsed time.Duration) {
	m.Requests.WithLabelValues(backend, result).Inc()
	m.RequestDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// BreakerStateChanged records a breaker transition as 0, 1 or 2.
func (m *ClassifierMetrics) BreakerStateChanged(state float64) {
	m.BreakerState.Set(state)
}
