// Package journal persists the outcome of inventory reconciliation cycles.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockx-tools/stockroom/pkg/inventory"
)

// Record is one persisted reconciliation outcome for one item.
type Record struct {
	ID         string
	ProductID  string
	VariantID  string
	Price      float64
	Quantity   int
	Created    int
	Updated    int
	Deleted    int
	Failed     int
	Errors     string
	RecordedAt time.Time
}

// FromUpdateResult builds a Record from a consolidated update result.
func FromUpdateResult(result *inventory.UpdateResult) *Record {
	record := &Record{
		ID:         uuid.NewString(),
		Created:    len(result.Created),
		Updated:    len(result.Updated),
		Deleted:    len(result.Deleted),
		Failed:     len(result.Failed),
		RecordedAt: time.Now().UTC(),
	}

	if result.Item != nil {
		record.ProductID = result.Item.ProductID()
		record.VariantID = result.Item.VariantID()
		record.Price = result.Item.Price()
		record.Quantity = result.Item.Quantity()
	}

	var messages []string
	for _, detail := range result.ErrorsDetail {
		messages = append(messages, detail.Message)
	}
	record.Errors = strings.Join(messages, "; ")

	return record
}

// Journal is the interface for persisting reconciliation outcomes.
type Journal interface {
	// RecordUpdate persists one reconciliation record.
	RecordUpdate(ctx context.Context, record *Record) error

	// Close closes the journal.
	Close() error
}

// RecordResults persists one record per consolidated result.
func RecordResults(ctx context.Context, j Journal, results []inventory.UpdateResult) error {
	for i := range results {
		err := j.RecordUpdate(ctx, FromUpdateResult(&results[i]))
		if err != nil {
			return err
		}
	}
	return nil
}
