package inventory

import (
	"context"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Selection names the listing fields a query can constrain. Nil slices
// impose no constraint.
type Selection struct {
	ProductIDs []string
	VariantIDs []string
	StyleIDs   []string
	Sizes      []string
}

// ItemsQuery builds a declarative scan over the inventory's active listings
// and aggregates the matches into ListedItems.
//
// When only product and variant ids are constrained, the constraint is
// pushed to the server; otherwise all active listings are fetched and
// filtered client side. Custom predicates always run client side, after
// aggregation.
type ItemsQuery struct {
	inventory *Inventory

	productIDs *listingFilter
	variantIDs *listingFilter
	styleIDs   *listingFilter
	sizes      *listingFilter

	predicates []func(*ListedItem) bool
}

func newItemsQuery(inv *Inventory) *ItemsQuery {
	return &ItemsQuery{
		inventory: inv,
		productIDs: newListingFilter(func(l *types.Listing) []string {
			return []string{l.Product.ID}
		}),
		variantIDs: newListingFilter(func(l *types.Listing) []string {
			return []string{l.Variant.ID}
		}),
		styleIDs: newListingFilter(func(l *types.Listing) []string {
			return l.StyleIDs()
		}),
		sizes: newListingFilter(func(l *types.Listing) []string {
			return []string{l.VariantValue()}
		}),
	}
}

// Include widens the allowed sets of the selection's fields.
func (q *ItemsQuery) Include(s Selection) *ItemsQuery {
	q.productIDs.include(s.ProductIDs)
	q.variantIDs.include(s.VariantIDs)
	q.styleIDs.include(s.StyleIDs)
	q.sizes.include(s.Sizes)
	return q
}

// FilterBy narrows the allowed sets of the selection's fields. Empty fields
// impose no constraint.
func (q *ItemsQuery) FilterBy(s Selection) *ItemsQuery {
	q.productIDs.apply(s.ProductIDs)
	q.variantIDs.apply(s.VariantIDs)
	q.styleIDs.apply(s.StyleIDs)
	q.sizes.apply(s.Sizes)
	return q
}

// Filter adds a custom predicate over the aggregated ListedItems.
func (q *ItemsQuery) Filter(predicate func(*ListedItem) bool) *ItemsQuery {
	q.predicates = append(q.predicates, predicate)
	return q
}

// Get runs the query. Result order follows the underlying listing scan; no
// sort is promised.
func (q *ItemsQuery) Get(ctx context.Context) ([]*ListedItem, error) {
	items, err := ListedItemsFromListings(ctx, q.inventory, q.listings())
	if err != nil {
		return nil, err
	}

	if len(q.predicates) == 0 {
		return items, nil
	}

	var matched []*ListedItem
	for _, item := range items {
		if q.matches(item) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (q *ItemsQuery) matches(item *ListedItem) bool {
	for _, predicate := range q.predicates {
		if !predicate(item) {
			return false
		}
	}
	return true
}

func (q *ItemsQuery) listings() ListingSource {
	if q.styleIDs.empty() && q.sizes.empty() {
		// Only id constraints; the server can evaluate them.
		return q.inventory.api.Listings.GetAllListings(&api.ListingsQuery{
			ProductIDs: q.productIDs.allowedValues(),
			VariantIDs: q.variantIDs.allowedValues(),
			Statuses:   []types.ListingStatus{types.ListingActive},
			PageSize:   100,
		})
	}

	return &filteredListings{
		source: q.inventory.api.Listings.GetAllListings(&api.ListingsQuery{
			Statuses: []types.ListingStatus{types.ListingActive},
			PageSize: 100,
		}),
		filters: []*listingFilter{q.productIDs, q.variantIDs, q.styleIDs, q.sizes},
	}
}

// filteredListings applies the field filters while streaming.
type filteredListings struct {
	source  ListingSource
	filters []*listingFilter
	item    types.Listing
}

func (f *filteredListings) Next(ctx context.Context) bool {
	for f.source.Next(ctx) {
		listing := f.source.Item()
		if f.allow(&listing) {
			f.item = listing
			return true
		}
	}
	return false
}

func (f *filteredListings) allow(listing *types.Listing) bool {
	for _, filter := range f.filters {
		if !filter.match(listing) {
			return false
		}
	}
	return true
}

func (f *filteredListings) Item() types.Listing { return f.item }

func (f *filteredListings) Err() error { return f.source.Err() }
