package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_matches_created_total",
			Help: "Total number of payment matches created",
		},
	)

	MatchesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_matches_confirmed_total",
			Help: "Total number of payment matches confirmed by an admin",
		},
	)

	CyclesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aid_cycles_completed_total",
			Help: "Total number of completed aid cycles",
		},
	)
)
