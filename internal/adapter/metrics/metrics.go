// Package metrics holds the Prometheus registry and the metric groups of the
// reception service. Each group registers itself on a caller-provided
// registerer so tests can use an isolated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reception"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Set bundles every metric group of a running process.
type Set struct {
	Reception  *ReceptionMetrics
	Classifier *ClassifierMetrics
	Cache      *CacheMetrics
	HTTP       *HTTPMetrics
	Redis      *RedisMetrics
	DB         *DBMetrics
}

// NewSet registers all metric groups on reg.
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		Reception:  NewReceptionMetrics(reg),
		Classifier: NewClassifierMetrics(reg),
		Cache:      NewCacheMetrics(reg),
		HTTP:       NewHTTPMetrics(reg),
		Redis:      NewRedisMetrics(reg),
		DB:         NewDBMetrics(reg),
	}
}
