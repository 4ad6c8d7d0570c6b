// Package metrics provides Prometheus metrics for the label checker.
// Two families are exported:
//   - HTTP server metrics (request totals, latency, in-flight requests, rate limiter buckets)
//   - openFDA label lookup metrics (lookups per search field and outcome, lookup latency,
//     upstream probe state)
//
// All metrics are registered with the Prometheus default registry during package
// initialization and served by the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes used as the "outcome" label of LabelLookupsTotal.
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since last cleanup)",
		},
	)

	LabelLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfda_label_queries_total",
			Help: "openFDA label queries by search field and outcome",
		},
		[]string{"field", "outcome"},
	)

	LabelLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openfda_label_query_duration_seconds",
			Help:    "openFDA label query latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"field"},
	)

	UpstreamUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "openfda_upstream_up",
			Help: "1 if the last openFDA reachability probe succeeded, 0 otherwise",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(LabelLookupsTotal)
	prometheus.MustRegister(LabelLookupDuration)
	prometheus.MustRegister(UpstreamUp)
}

// ObserveLabelQuery records one openFDA query against a search field.
func ObserveLabelQuery(field, outcome string, elapsed time.Duration) {
	LabelLookupsTotal.WithLabelValues(field, outcome).Inc()
	LabelLookupDuration.WithLabelValues(field).Observe(elapsed.Seconds())
}

// SetUpstreamUp mirrors the latest probe result into the openfda_upstream_up gauge.
func SetUpstreamUp(up bool) {
	if up {
		UpstreamUp.Set(1)
		return
	}
	UpstreamUp.Set(0)
}
