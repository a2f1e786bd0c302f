package api

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// BatchKind selects one of the three batch endpoints.
type BatchKind string

// Batch endpoint kinds.
const (
	BatchCreate BatchKind = "create-listing"
	BatchUpdate BatchKind = "update-listing"
	BatchDelete BatchKind = "delete-listing"
)

func (k BatchKind) endpoint() string {
	return "/selling/batch/" + string(k)
}

// Batch wraps the bulk listing endpoints. A submission is accepted
// immediately and processed asynchronously; progress is observed through
// GetStatus and per-item outcomes through the item calls.
type Batch struct {
	client *client.Client
	logger *zap.Logger
}

type batchItemsRequest[T any] struct {
	Items []T `json:"items"`
}

// CreateListings submits a create batch. Inputs must already be coalesced:
// at most one entry per (variantId, amount).
func (b *Batch) CreateListings(ctx context.Context, inputs []types.BatchCreateInput) (*types.BatchStatus, error) {
	return b.submit(ctx, BatchCreate, batchItemsRequest[types.BatchCreateInput]{Items: inputs})
}

// UpdateListings submits an update batch.
func (b *Batch) UpdateListings(ctx context.Context, inputs []types.BatchUpdateInput) (*types.BatchStatus, error) {
	return b.submit(ctx, BatchUpdate, batchItemsRequest[types.BatchUpdateInput]{Items: inputs})
}

// DeleteListings submits a delete batch for the given listing IDs.
func (b *Batch) DeleteListings(ctx context.Context, listingIDs []string) (*types.BatchStatus, error) {
	inputs := make([]types.BatchDeleteInput, len(listingIDs))
	for i, id := range listingIDs {
		inputs[i] = types.BatchDeleteInput{ListingID: id}
	}
	return b.submit(ctx, BatchDelete, batchItemsRequest[types.BatchDeleteInput]{Items: inputs})
}

func (b *Batch) submit(ctx context.Context, kind BatchKind, body any) (*types.BatchStatus, error) {
	response, err := b.client.Post(ctx, kind.endpoint(), body)
	if err != nil {
		return nil, err
	}

	status, err := decodeBatchStatus(response.Data)
	if err != nil {
		return nil, err
	}

	BatchSubmissionsTotal.WithLabelValues(string(kind)).Inc()
	b.logger.Info("batch-submitted",
		zap.String("kind", string(kind)),
		zap.String("batch-id", status.BatchID),
		zap.Int("total-items", status.TotalItems))
	return status, nil
}

// GetStatus fetches the progress report of a batch.
func (b *Batch) GetStatus(ctx context.Context, kind BatchKind, batchID string) (*types.BatchStatus, error) {
	response, err := b.client.Get(ctx, kind.endpoint()+"/"+batchID, nil)
	if err != nil {
		return nil, err
	}
	return decodeBatchStatus(response.Data)
}

// CreateItems fetches the per-item outcomes of a create batch, optionally
// filtered by item status.
func (b *Batch) CreateItems(ctx context.Context, batchID string, status types.BatchItemStatus) ([]types.BatchCreateResult, error) {
	return batchItems[types.BatchCreateResult](ctx, b, BatchCreate, batchID, status)
}

// UpdateItems fetches the per-item outcomes of an update batch.
func (b *Batch) UpdateItems(ctx context.Context, batchID string, status types.BatchItemStatus) ([]types.BatchUpdateResult, error) {
	return batchItems[types.BatchUpdateResult](ctx, b, BatchUpdate, batchID, status)
}

// DeleteItems fetches the per-item outcomes of a delete batch.
func (b *Batch) DeleteItems(ctx context.Context, batchID string, status types.BatchItemStatus) ([]types.BatchDeleteResult, error) {
	return batchItems[types.BatchDeleteResult](ctx, b, BatchDelete, batchID, status)
}

// Items fetches per-item outcomes behind the kind-neutral BatchResult
// interface, for callers that treat the three batch kinds uniformly.
func (b *Batch) Items(ctx context.Context, kind BatchKind, batchID string, status types.BatchItemStatus) ([]types.BatchResult, error) {
	switch kind {
	case BatchCreate:
		items, err := b.CreateItems(ctx, batchID, status)
		if err != nil {
			return nil, err
		}
		results := make([]types.BatchResult, len(items))
		for i := range items {
			results[i] = &items[i]
		}
		return results, nil
	case BatchUpdate:
		items, err := b.UpdateItems(ctx, batchID, status)
		if err != nil {
			return nil, err
		}
		results := make([]types.BatchResult, len(items))
		for i := range items {
			results[i] = &items[i]
		}
		return results, nil
	case BatchDelete:
		items, err := b.DeleteItems(ctx, batchID, status)
		if err != nil {
			return nil, err
		}
		results := make([]types.BatchResult, len(items))
		for i := range items {
			results[i] = &items[i]
		}
		return results, nil
	default:
		return nil, fmt.Errorf("unknown batch kind %q", kind)
	}
}

func batchItems[T any](ctx context.Context, b *Batch, kind BatchKind, batchID string, status types.BatchItemStatus) ([]T, error) {
	var params map[string]string
	if status != "" {
		params = map[string]string{"status": string(status)}
	}

	response, err := b.client.Get(ctx, kind.endpoint()+"/"+batchID+"/items", params)
	if err != nil {
		return nil, err
	}

	var payload batchItemsRequest[T]
	err = json.Unmarshal(response.Data, &payload)
	if err != nil {
		return nil, fmt.Errorf("unmarshal batch items: %w", err)
	}
	return payload.Items, nil
}

func decodeBatchStatus(data json.RawMessage) (*types.BatchStatus, error) {
	var status types.BatchStatus
	err := json.Unmarshal(data, &status)
	if err != nil {
		return nil, fmt.Errorf("unmarshal batch status: %w", err)
	}
	return &status, nil
}
