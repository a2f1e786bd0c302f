package inventory

import (
	"sort"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// ErrorDetail aggregates identical batch item failures. ListingID is set
// only for delete failures, where the input names the listing.
type ErrorDetail struct {
	Message     string
	Occurrences int
	ListingID   string
}

// errorDetailsFromMessages counts identical messages, preserving first
// appearance order.
func errorDetailsFromMessages(messages []string) []ErrorDetail {
	counts := make(map[string]int)
	var order []string
	for _, message := range messages {
		if message == "" {
			continue
		}
		if counts[message] == 0 {
			order = append(order, message)
		}
		counts[message]++
	}

	details := make([]ErrorDetail, 0, len(order))
	for _, message := range order {
		details = append(details, ErrorDetail{
			Message:     message,
			Occurrences: counts[message],
		})
	}
	return details
}

// UpdateResult is the per-item consolidated outcome of one reconciliation
// cycle: which listing ids were created, updated, deleted or failed, plus
// aggregated error details.
type UpdateResult struct {
	Item         *ListedItem
	Created      []string
	Updated      []string
	Deleted      []string
	Failed       []string
	ErrorsDetail []ErrorDetail
}

// Consolidate merges results possibly produced in several steps for
// overlapping items. Ids are unioned per item, then the lifecycle rules are
// applied: an id created and later updated counts as updated; anything later
// deleted counts as deleted; an id that eventually succeeded leaves the
// failed set. Errors are collapsed by message. The id sets of each returned
// result are sorted and pairwise disjoint.
func Consolidate(results []UpdateResult) []UpdateResult {
	grouped := make(map[*ListedItem][]UpdateResult)
	var order []*ListedItem
	for _, result := range results {
		if _, ok := grouped[result.Item]; !ok {
			order = append(order, result.Item)
		}
		grouped[result.Item] = append(grouped[result.Item], result)
	}

	consolidated := make([]UpdateResult, 0, len(order))
	for _, item := range order {
		itemResults := grouped[item]

		created := unionIDs(itemResults, func(r UpdateResult) []string { return r.Created })
		updated := unionIDs(itemResults, func(r UpdateResult) []string { return r.Updated })
		deleted := unionIDs(itemResults, func(r UpdateResult) []string { return r.Deleted })
		failed := unionIDs(itemResults, func(r UpdateResult) []string { return r.Failed })

		for id := range updated {
			delete(created, id)
		}
		for id := range deleted {
			delete(created, id)
			delete(updated, id)
		}
		for id := range created {
			delete(failed, id)
		}
		for id := range updated {
			delete(failed, id)
		}
		for id := range deleted {
			delete(failed, id)
		}

		var messages []string
		for _, result := range itemResults {
			for _, detail := range result.ErrorsDetail {
				for i := 0; i < detail.Occurrences; i++ {
					messages = append(messages, detail.Message)
				}
			}
		}

		consolidated = append(consolidated, UpdateResult{
			Item:         item,
			Created:      sortedIDs(created),
			Updated:      sortedIDs(updated),
			Deleted:      sortedIDs(deleted),
			Failed:       sortedIDs(failed),
			ErrorsDetail: errorDetailsFromMessages(messages),
		})
	}

	return consolidated
}

func unionIDs(results []UpdateResult, pick func(UpdateResult) []string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, result := range results {
		for _, id := range pick(result) {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func sortedIDs(ids map[string]struct{}) []string {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return sorted
}

// resultsFromCreate maps create batch outcomes back to the groups that
// produced them, keyed by (variant id, amount).
func resultsFromCreate(groups []*createGroup, results []types.BatchCreateResult) []UpdateResult {
	type groupKey struct {
		variantID string
		amount    float64
	}

	byKey := make(map[groupKey]int, len(groups))
	for i, group := range groups {
		byKey[groupKey{group.variantID, group.price}] = i
	}

	created := make([][]string, len(groups))
	messages := make([][]string, len(groups))
	for _, result := range results {
		key := groupKey{
			variantID: result.ListingInput.VariantID,
			amount:    float64(result.ListingInput.Amount),
		}
		i, ok := byKey[key]
		if !ok {
			continue
		}
		if result.Error != "" {
			messages[i] = append(messages[i], result.Error)
			continue
		}
		if id := result.ResultListingID(); id != "" {
			created[i] = append(created[i], id)
		}
	}

	updateResults := make([]UpdateResult, 0, len(groups))
	for i, group := range groups {
		updateResults = append(updateResults, UpdateResult{
			Item:         group.representative(),
			Created:      created[i],
			ErrorsDetail: errorDetailsFromMessages(messages[i]),
		})
	}
	return updateResults
}

// resultsFromDelete folds delete batch outcomes into one itemless result;
// callers re-attribute the ids to their items. Failures keep per-listing
// error details since the input names the listing.
func resultsFromDelete(results []types.BatchDeleteResult) UpdateResult {
	var result UpdateResult
	for _, r := range results {
		if r.Error != "" {
			result.Failed = append(result.Failed, r.ListingInput.ListingID)
			result.ErrorsDetail = append(result.ErrorsDetail, ErrorDetail{
				Message:     r.Error,
				Occurrences: 1,
				ListingID:   r.ListingInput.ListingID,
			})
			continue
		}
		result.Deleted = append(result.Deleted, r.ResultListingID())
	}
	return result
}

// resultsFromUpdate maps update batch outcomes back to the items whose
// listings were amended. Listing ids with no settled outcome (a timed-out
// batch) are attributed to neither set.
func resultsFromUpdate(items []*ListedItem, results []types.BatchUpdateResult) []UpdateResult {
	settled := make(map[string]string, len(results)) // listing id -> error ("" = ok)
	for _, r := range results {
		settled[r.ListingInput.ListingID] = r.Error
	}

	updateResults := make([]UpdateResult, 0, len(items))
	for _, item := range items {
		var result UpdateResult
		result.Item = item

		var messages []string
		for _, listingID := range item.ListingIDs() {
			message, ok := settled[listingID]
			if !ok {
				continue
			}
			if message != "" {
				result.Failed = append(result.Failed, listingID)
				messages = append(messages, message)
				continue
			}
			result.Updated = append(result.Updated, listingID)
		}
		result.ErrorsDetail = errorDetailsFromMessages(messages)

		updateResults = append(updateResults, result)
	}
	return updateResults
}
