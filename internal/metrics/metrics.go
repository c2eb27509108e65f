// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. Create it with New.
type Metrics struct {
	instances    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// New registers all collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so runs do not collide.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		instances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_process_instances_total",
			Help: "Finished process instances by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cadastro_process_duration_seconds",
			Help:    "Wall time of a process instance from dispatch to done.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_http_requests_total",
			Help: "HTTP requests handled by method and status code.",
		}, []string{"method", "status"}),
		gatherer: reg,
	}
}

// ObserveInstance records one finished process instance.
func (m *Metrics) ObserveInstance(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "none"
	}
	m.instances.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveHTTP records one handled HTTP request.
func (m *Metrics) ObserveHTTP(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
