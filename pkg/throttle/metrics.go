package throttle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ThrottleWaitSeconds tracks time spent queued behind the rate limiter.
	ThrottleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockroom_throttle_wait_seconds",
		Help:    "Time requests spend waiting for a rate limiter slot",
		Buckets: prometheus.DefBuckets,
	})

	// RetriesTotal tracks retried request attempts.
	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_throttle_retries_total",
		Help: "Total number of retried request attempts",
	})
)
