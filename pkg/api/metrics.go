package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchSubmissionsTotal tracks submitted batches by kind.
	BatchSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_api_batch_submissions_total",
		Help: "Total number of submitted listing batches",
	}, []string{"kind"})

	// BatchPollsTotal tracks batch status polls.
	BatchPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_api_batch_polls_total",
		Help: "Total number of batch status polls",
	})

	// BatchTimeoutsTotal tracks batch waits that ran out of budget.
	BatchTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_api_batch_timeouts_total",
		Help: "Total number of batch waits that timed out",
	})

	// OperationPollsTotal tracks single listing operation polls.
	OperationPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_api_operation_polls_total",
		Help: "Total number of listing operation polls",
	})
)
