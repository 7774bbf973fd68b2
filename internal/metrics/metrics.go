// Package metrics provides Prometheus metrics for the ledger frontend.
// Outbound API calls and inbound page requests are both recorded here and
// exposed on /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all ledger metrics
	namespace = "ledger"
)

var (
	// APIRequestsTotal tracks calls made against the remote REST API
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of requests issued to the remote API",
		},
		[]string{"method", "resource", "status_class"},
	)

	// APIRequestDuration tracks the latency of remote API calls
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of remote API requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "resource"},
	)

	// PageRequestsTotal tracks requests served by the frontend
	PageRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "Total number of requests served by the frontend",
		},
		[]string{"method", "status_class"},
	)

	// RateLimitHits tracks requests rejected by the per-client limiter
	RateLimitHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
	)

	// SuspiciousRequests tracks requests flagged by the frontend, by reason
	SuspiciousRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicious_requests_total",
			Help:      "Total number of requests flagged as suspicious",
		},
		[]string{"reason"},
	)

	// EventsPublished tracks entity events sent to the broker
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of entity events published",
		},
		[]string{"entity", "action", "result"},
	)
)

// Registry holds every ledger collector. It is separate from the global
// default registry so tests can build servers repeatedly.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		PageRequestsTotal,
		RateLimitHits,
		SuspiciousRequests,
		EventsPublished,
	)
}

// StatusClass buckets an HTTP status code into 2xx/3xx/4xx/5xx. A zero code
// means the request never got a response.
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
