package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks API request latency.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockroom_client_request_duration_seconds",
		Help:    "Duration of marketplace API requests",
		Buckets: prometheus.DefBuckets,
	})

	// RequestErrorsTotal tracks failed API requests.
	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_client_request_errors_total",
		Help: "Total number of failed marketplace API requests",
	})

	// TokenRefreshesTotal tracks successful token refreshes.
	TokenRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_client_token_refreshes_total",
		Help: "Total number of successful OAuth token refreshes",
	})

	// TokenRefreshFailuresTotal tracks failed token refreshes.
	TokenRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_client_token_refresh_failures_total",
		Help: "Total number of failed OAuth token refreshes",
	})
)
