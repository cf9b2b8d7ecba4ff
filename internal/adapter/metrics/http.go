package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// API operations, keyed by echo route pattern. Requests to routes outside
// this table (health, version, metrics, unmatched paths) are not recorded.
var apiOperations = map[string]string{
	"/api/reception":           "analyze",
	"/api/film-types":          "film_types",
	"/api/films":               "films",
	"/api/films/:id":           "film",
	"/api/films/:id/reception": "analyze_film",
}

// Analysis requests classify every review of a film and can run for tens of
// seconds, well past prometheus.DefBuckets.
var requestBuckets = prometheus.ExponentialBuckets(0.01, 2, 13)

// HTTPMetrics tracks reception API requests by operation.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlight        *prometheus.GaugeVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of reception API requests in seconds.",
			Buckets:   requestBuckets,
		}, []string{"operation", "method", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of reception API requests.",
		}, []string{"operation", "method", "status_code"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "in_flight_requests",
			Help:      "Reception API requests currently being processed.",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlight)
	return m
}

// Operation maps an echo route pattern to its API operation name.
func Operation(route string) (string, bool) {
	op, ok := apiOperations[route]
	return op, ok
}

// Middleware records API requests under their operation name.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			op, ok := Operation(c.Path())
			if !ok {
				return next(c)
			}

			inFlight := m.InFlight.WithLabelValues(op)
			inFlight.Inc()
			defer inFlight.Dec()

			method := c.Request().Method
			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
				status := strconv.Itoa(c.Response().Status)
				m.RequestDuration.WithLabelValues(op, method, status).Observe(v)
				m.RequestsTotal.WithLabelValues(op, method, status).Inc()
			}))

			err := next(c)
			timer.ObserveDuration()
			return err
		}
	}
}
