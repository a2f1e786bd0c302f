package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// createGroup is one coalesced create input: the marketplace accepts at most
// one create entry per (variant id, price), so items sharing that key are
// merged and their quantities summed before submission.
type createGroup struct {
	variantID string
	price     float64
	quantity  int
	items     []*ListedItem
}

// representative returns the item created listing ids are attributed to.
func (g *createGroup) representative() *ListedItem { return g.items[0] }

// coalesce groups items by (variant id, price) in first-appearance order.
// With syncQuantity set, the summed quantity is the listing delta instead of
// the full desired quantity.
func coalesce(items []*ListedItem, syncQuantity bool) []*createGroup {
	type groupKey struct {
		variantID string
		price     float64
	}

	byKey := make(map[groupKey]*createGroup)
	var groups []*createGroup

	for _, item := range items {
		quantity := item.Quantity()
		if syncQuantity {
			quantity = item.QuantityToSync()
		}
		if quantity <= 0 {
			continue
		}

		key := groupKey{item.VariantID(), item.Price()}
		if group, ok := byKey[key]; ok {
			group.quantity += quantity
			group.items = append(group.items, item)
			continue
		}

		group := &createGroup{
			variantID: item.VariantID(),
			price:     item.Price(),
			quantity:  quantity,
			items:     []*ListedItem{item},
		}
		byKey[key] = group
		groups = append(groups, group)
	}

	return groups
}

// submitInBatches slices inputs into batches of at most size and submits
// each, returning the batch ids.
func submitInBatches[T any](
	ctx context.Context,
	inputs []T,
	size int,
	submit func(context.Context, []T) (*types.BatchStatus, error),
) ([]string, error) {
	var batchIDs []string
	for start := 0; start < len(inputs); start += size {
		end := start + size
		if end > len(inputs) {
			end = len(inputs)
		}

		status, err := submit(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		batchIDs = append(batchIDs, status.BatchID)
	}
	return batchIDs, nil
}

// awaitBatches waits for the given batches and then fetches every item
// outcome that settled, timed out or not. Returns the ids of batches still
// pending when the wait budget ran out.
func awaitBatches[T any](
	ctx context.Context,
	batch *api.Batch,
	kind api.BatchKind,
	batchIDs []string,
	timeout time.Duration,
	items func(context.Context, string, types.BatchItemStatus) ([]T, error),
) ([]T, []string, error) {
	if len(batchIDs) == 0 {
		return nil, nil, nil
	}

	var timedOut []string
	err := batch.AwaitCompletion(ctx, kind, batchIDs, timeout)
	if err != nil {
		var batchTimeout *types.BatchTimeoutError
		if !errors.As(err, &batchTimeout) {
			return nil, nil, err
		}
		timedOut = batchTimeout.QueuedBatchIDs
	}

	var results []T
	for _, batchID := range batchIDs {
		batchResults, err := items(ctx, batchID, types.BatchItemCompleted)
		if err != nil {
			return nil, nil, err
		}
		failedResults, err := items(ctx, batchID, types.BatchItemFailed)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, batchResults...)
		results = append(results, failedResults...)
	}
	return results, timedOut, nil
}

// createListings submits coalesced create batches for the groups and maps
// the outcomes back onto the groups' representative items.
func (inv *Inventory) createListings(ctx context.Context, groups []*createGroup) ([]UpdateResult, []string, error) {
	inputs := make([]types.BatchCreateInput, 0, len(groups))
	for _, group := range groups {
		inputs = append(inputs, types.BatchCreateInput{
			VariantID:    group.variantID,
			Amount:       types.Amount(group.price),
			Quantity:     group.quantity,
			Active:       true,
			CurrencyCode: inv.currency,
		})
	}

	batchIDs, err := submitInBatches(ctx, inputs, inv.batchSize, inv.api.Batch.CreateListings)
	if err != nil {
		return nil, nil, err
	}

	results, timedOut, err := awaitBatches(
		ctx, inv.api.Batch, api.BatchCreate, batchIDs,
		inv.batchTimeout, inv.api.Batch.CreateItems)
	if err != nil {
		return nil, nil, err
	}

	updateResults := resultsFromCreate(groups, results)
	for _, result := range updateResults {
		ListingsCreatedTotal.Add(float64(len(result.Created)))
	}
	return updateResults, timedOut, nil
}

// deleteListings submits delete batches for the ids and folds the outcomes
// into one itemless result.
func (inv *Inventory) deleteListings(ctx context.Context, listingIDs []string) (UpdateResult, []string, error) {
	batchIDs, err := submitInBatches(ctx, listingIDs, inv.batchSize,
		inv.api.Batch.DeleteListings)
	if err != nil {
		return UpdateResult{}, nil, err
	}

	results, timedOut, err := awaitBatches(
		ctx, inv.api.Batch, api.BatchDelete, batchIDs,
		inv.batchTimeout, inv.api.Batch.DeleteItems)
	if err != nil {
		return UpdateResult{}, nil, err
	}

	result := resultsFromDelete(results)
	ListingsDeletedTotal.Add(float64(len(result.Deleted)))
	return result, timedOut, nil
}

// updateListings submits one update input per backing listing of each item.
// Updates are per-listing at the wire level; coalescing does not apply.
func (inv *Inventory) updateListings(ctx context.Context, items []*ListedItem) ([]UpdateResult, []string, error) {
	var inputs []types.BatchUpdateInput
	for _, item := range items {
		for _, listingID := range item.ListingIDs() {
			inputs = append(inputs, types.BatchUpdateInput{
				ListingID:    listingID,
				Amount:       types.Amount(item.Price()),
				CurrencyCode: inv.currency,
			})
		}
	}

	batchIDs, err := submitInBatches(ctx, inputs, inv.batchSize, inv.api.Batch.UpdateListings)
	if err != nil {
		return nil, nil, err
	}

	results, timedOut, err := awaitBatches(
		ctx, inv.api.Batch, api.BatchUpdate, batchIDs,
		inv.batchTimeout, inv.api.Batch.UpdateItems)
	if err != nil {
		return nil, nil, err
	}

	updateResults := resultsFromUpdate(items, results)
	for _, result := range updateResults {
		ListingsUpdatedTotal.Add(float64(len(result.Updated)))
	}
	return updateResults, timedOut, nil
}

// updateQuantity reconciles the listing count of every item whose desired
// quantity diverged. Decreases delete the trailing ids; increases submit
// coalesced creates; both paths run and their outcomes combine.
func (inv *Inventory) updateQuantity(ctx context.Context, items []*ListedItem) ([]UpdateResult, []string, error) {
	var decrease, increase []*ListedItem
	for _, item := range items {
		switch {
		case item.QuantityToSync() < 0:
			decrease = append(decrease, item)
		case item.QuantityToSync() > 0:
			increase = append(increase, item)
		}
	}

	var deleteIDs []string
	for _, item := range decrease {
		ids := item.ListingIDs()
		deleteIDs = append(deleteIDs, ids[len(ids)+item.QuantityToSync():]...)
	}

	deleteResult, deleteTimedOut, err := inv.deleteListings(ctx, deleteIDs)
	if err != nil {
		return nil, nil, err
	}

	createResults, createTimedOut, err := inv.createListings(ctx, coalesce(increase, true))
	if err != nil {
		return nil, nil, err
	}

	// Attribute the folded delete outcome back to its items and drop the
	// successfully deleted ids from each.
	deleted := make(map[string]struct{}, len(deleteResult.Deleted))
	for _, id := range deleteResult.Deleted {
		deleted[id] = struct{}{}
	}
	failed := make(map[string]struct{}, len(deleteResult.Failed))
	for _, id := range deleteResult.Failed {
		failed[id] = struct{}{}
	}
	errorsByID := make(map[string]ErrorDetail, len(deleteResult.ErrorsDetail))
	for _, detail := range deleteResult.ErrorsDetail {
		errorsByID[detail.ListingID] = detail
	}

	var results []UpdateResult
	for _, item := range decrease {
		var result UpdateResult
		result.Item = item

		var remaining []string
		for _, listingID := range item.listingIDs {
			if _, ok := deleted[listingID]; ok {
				result.Deleted = append(result.Deleted, listingID)
				continue
			}
			remaining = append(remaining, listingID)
			if _, ok := failed[listingID]; ok {
				result.Failed = append(result.Failed, listingID)
				if detail, ok := errorsByID[listingID]; ok {
					result.ErrorsDetail = append(result.ErrorsDetail, detail)
				}
			}
		}
		item.listingIDs = remaining

		results = append(results, result)
	}

	// Created ids attach to the group representative.
	for _, result := range createResults {
		result.Item.listingIDs = append(result.Item.listingIDs, result.Created...)
	}
	results = append(results, createResults...)

	return results, append(deleteTimedOut, createTimedOut...), nil
}
