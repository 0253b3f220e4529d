// Package metrics holds the Prometheus collectors for the relay.
// Every Metrics value owns its registry, so tests can build as many as they like.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relay"

// Metrics groups the inbound HTTP and outbound upstream collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // endpoint, status
	RequestDuration *prometheus.HistogramVec // endpoint
	ActiveRequests  prometheus.Gauge
	ErrorsTotal     *prometheus.CounterVec // type: client_error, server_error

	// UpstreamRequests counts generateContent calls by result:
	// "2xx", "4xx", "5xx", "malformed", "error" or "breaker_open".
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram
	BreakerState     prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry that also exposes
// Go runtime and process metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of error responses by class",
		}, []string{"type"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of calls to the generative API by result",
		}, []string{"result"}),
		UpstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "duration_seconds",
			Help:      "Duration of calls to the generative API in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "State of the upstream circuit breaker (0=closed, 1=half-open, 2=open)",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())

	switch {
	case status >= 500:
		m.ErrorsTotal.WithLabelValues("server_error").Inc()
	case status >= 400:
		m.ErrorsTotal.WithLabelValues("client_error").Inc()
	}
}

// ObserveUpstream records one upstream call. A zero duration means no call
// left the process, as when the breaker rejects it.
func (m *Metrics) ObserveUpstream(result string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(result).Inc()
	if d > 0 {
		m.UpstreamDuration.Observe(d.Seconds())
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
