// Package metrics exposes Prometheus collectors for intent fulfillment.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered for one process
type Metrics struct {
	registry *prometheus.Registry

	intentsTotal     *prometheus.CounterVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_intents_total",
				Help: "Total number of fulfilled intents by outcome",
			},
			[]string{"intent", "outcome"},
		),
		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_upstream_requests_total",
				Help: "Total number of recipe API requests by outcome",
			},
			[]string{"operation", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voice_upstream_request_duration_seconds",
				Help:    "Recipe API request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"operation"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_profile_store_errors_total",
				Help: "Total number of profile store failures",
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		m.intentsTotal,
		m.upstreamTotal,
		m.upstreamDuration,
		m.storeErrors,
		prometheus.NewGoCollector(),
	)
	return m
}

// IntentHandled counts one turn of intent with the given outcome
func (m *Metrics) IntentHandled(intent, outcome string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(intent, outcome).Inc()
}

// UpstreamRequest records one recipe API call
func (m *Metrics) UpstreamRequest(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(operation, outcome).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ProfileStoreError counts one failed profile store operation
func (m *Metrics) ProfileStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

// Registry returns the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
