package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConsoleJournal implements Journal by printing to console.
type ConsoleJournal struct {
	logger *zap.Logger
}

// NewConsoleJournal creates a new console journal.
func NewConsoleJournal(logger *zap.Logger) *ConsoleJournal {
	logger.Info("console-journal-initialized")
	return &ConsoleJournal{
		logger: logger,
	}
}

// RecordUpdate prints one reconciliation record to console.
func (c *ConsoleJournal) RecordUpdate(ctx context.Context, record *Record) error {
	fmt.Println("────────────────────────────────────────────────")
	fmt.Printf("INVENTORY UPDATE %s\n", record.RecordedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Variant:  %s (product %s)\n", record.VariantID, record.ProductID)
	fmt.Printf("Price:    %.2f x %d\n", record.Price, record.Quantity)
	fmt.Printf("Created:  %d  Updated: %d  Deleted: %d  Failed: %d\n",
		record.Created, record.Updated, record.Deleted, record.Failed)
	if record.Errors != "" {
		fmt.Printf("Errors:   %s\n", record.Errors)
	}
	fmt.Println("────────────────────────────────────────────────")

	return nil
}

// Close is a no-op for console journal.
func (c *ConsoleJournal) Close() error {
	c.logger.Info("closing-console-journal")
	return nil
}
