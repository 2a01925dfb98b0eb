package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamcheck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code", "service"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamcheck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "service"},
	)

	// Calls made to the remote search, extractor, stories and predict services.
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamcheck_upstream_calls_total",
			Help: "Total number of calls to remote services",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamcheck_upstream_call_duration_seconds",
			Help:    "Remote service call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamcheck_resolutions_total",
			Help: "Query resolutions by outcome",
		},
		[]string{"outcome"},
	)

	UnansweredRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamcheck_unanswered_records_total",
			Help: "Unanswered questions dispatched for research",
		},
		[]string{"status"},
	)

	WorkerMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamcheck_worker_messages_total",
			Help: "Unanswered-question messages handled by the worker",
		},
		[]string{"status"},
	)
)
