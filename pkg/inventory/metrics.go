package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconciliationsTotal tracks inventory update cycles.
	ReconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_inventory_reconciliations_total",
		Help: "Total number of inventory reconciliation cycles",
	})

	// ReconciliationTimeoutsTotal tracks cycles with timed-out batches.
	ReconciliationTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_inventory_reconciliation_timeouts_total",
		Help: "Total number of reconciliation cycles with timed-out batches",
	})

	// ListingsCreatedTotal tracks listings created by reconciliation.
	ListingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_inventory_listings_created_total",
		Help: "Total number of listings created",
	})

	// ListingsUpdatedTotal tracks listings repriced by reconciliation.
	ListingsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_inventory_listings_updated_total",
		Help: "Total number of listings updated",
	})

	// ListingsDeletedTotal tracks listings deleted by reconciliation.
	ListingsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_inventory_listings_deleted_total",
		Help: "Total number of listings deleted",
	})
)
