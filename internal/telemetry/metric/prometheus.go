// Package metric provides Prometheus metrics for ptagate.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/ptagate/internal/core/pta"
)

const namespace = "ptagate"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Validation metrics
	Validations        *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	DecryptAttempts    *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	UpstreamErrors  prometheus.Counter

	// Configuration metrics
	ConfigReloads *prometheus.CounterVec
}

// NewRegistry creates a registry with the application metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Token validations by outcome and token source.",
		}, []string{"result", "method"}),

		ValidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating a request's tokens.",
			Buckets:   []float64{.00001, .000025, .00005, .0001, .00025, .0005, .001, .0025, .005},
		}),

		DecryptAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decrypt_attempts_total",
			Help:      "Decrypt and integrity attempts by key slot and result.",
		}, []string{"slot", "result"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration including the upstream round trip.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),

		UpstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Authorized requests the upstream could not serve.",
		}),

		ConfigReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reloads by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Validations,
		r.ValidationDuration,
		r.DecryptAttempts,
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.UpstreamErrors,
		r.ConfigReloads,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /-/metrics handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// MustRegister adds collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// RecordValidation counts a validation outcome: "authorized", "malformed",
// "forbidden", "expired" or "error".
func (r *Registry) RecordValidation(result string, method pta.AuthMethod) {
	r.Validations.WithLabelValues(result, method.String()).Inc()
}

// ObserveValidationDuration records how long a validation took.
func (r *Registry) ObserveValidationDuration(seconds float64) {
	r.ValidationDuration.Observe(seconds)
}

// ObserveDecrypt implements pta.Observer.
func (r *Registry) ObserveDecrypt(slot pta.KeySlot, ok bool) {
	result := "fail"
	if ok {
		result = "ok"
	}
	r.DecryptAttempts.WithLabelValues(slot.String(), result).Inc()
}

// RecordRequest counts a finished HTTP request.
func (r *Registry) RecordRequest(method, status string) {
	r.RequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveRequestDuration records an HTTP request duration.
func (r *Registry) ObserveRequestDuration(method string, seconds float64) {
	r.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// IncRateLimited counts a rate limited request.
func (r *Registry) IncRateLimited() {
	r.RateLimited.Inc()
}

// IncUpstreamError counts a failed upstream round trip.
func (r *Registry) IncUpstreamError() {
	r.UpstreamErrors.Inc()
}

// RecordConfigReload counts a configuration reload attempt.
func (r *Registry) RecordConfigReload(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	r.ConfigReloads.WithLabelValues(result).Inc()
}
