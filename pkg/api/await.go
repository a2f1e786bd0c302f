package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// First poll interval of a batch wait; doubles each round up to the
// remaining budget.
const initialPollInterval = time.Second

// AwaitCompletion polls the given batches until every item of every batch
// reaches a terminal state. Each round sleeps first, then refreshes the
// status of the batches still pending; the sleep doubles each round and is
// capped at the remaining budget, so total sleep never exceeds
// timeout + initialPollInterval.
//
// When the budget runs out, the per-item results already available across
// ALL batches (finished and pending alike) are collected and returned inside
// a BatchTimeoutError together with the IDs still pending, so callers can
// salvage partial progress.
func (b *Batch) AwaitCompletion(ctx context.Context, kind BatchKind, batchIDs []string, timeout time.Duration) error {
	pending := make(map[string]struct{}, len(batchIDs))
	for _, id := range batchIDs {
		pending[id] = struct{}{}
	}
	if len(pending) == 0 {
		return nil
	}

	sleep := initialPollInterval
	var waited time.Duration

	for waited <= timeout {
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		for id := range pending {
			status, err := b.GetStatus(ctx, kind, id)
			if err != nil {
				return err
			}
			BatchPollsTotal.Inc()

			if status.Done() {
				delete(pending, id)
			}
		}

		if len(pending) == 0 {
			return nil
		}

		waited += sleep
		sleep = minDuration(sleep*2, timeout-waited)
		if sleep <= 0 {
			break
		}
	}

	BatchTimeoutsTotal.Inc()
	b.logger.Warn("batch-await-timeout",
		zap.String("kind", string(kind)),
		zap.Int("pending", len(pending)))

	queued := make([]string, 0, len(pending))
	for id := range pending {
		queued = append(queued, id)
	}

	partial, err := b.collectPartial(ctx, kind, batchIDs)
	if err != nil {
		b.logger.Warn("batch-partial-collect-failed", zap.Error(err))
	}

	return &types.BatchTimeoutError{
		QueuedBatchIDs: queued,
		PartialResults: partial,
	}
}

// collectPartial gathers the item outcomes already terminal across every
// batch of a timed-out wait. Items still queued are skipped.
func (b *Batch) collectPartial(ctx context.Context, kind BatchKind, batchIDs []string) ([]types.BatchResult, error) {
	var results []types.BatchResult
	for _, id := range batchIDs {
		items, err := b.Items(ctx, kind, id, "")
		if err != nil {
			return results, err
		}
		for _, item := range items {
			if item.ItemStatus() != types.BatchItemQueued {
				results = append(results, item)
			}
		}
	}
	return results, nil
}
