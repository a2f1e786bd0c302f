// Package inventory keeps a logical view of the seller's stock and
// reconciles it against the marketplace through batched listing operations.
package inventory

import (
	"context"
	"fmt"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// Item is a logical inventory position: a quantity of one variant offered at
// one price. It has no marketplace identity of its own.
type Item struct {
	ProductID string
	VariantID string
	Price     float64
	Quantity  int
}

// NewItem creates a validated Item.
func NewItem(productID, variantID string, price float64, quantity int) (*Item, error) {
	if price < 0 {
		return nil, fmt.Errorf("item price must not be negative, got %v", price)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("item quantity must not be negative, got %d", quantity)
	}
	return &Item{
		ProductID: productID,
		VariantID: variantID,
		Price:     price,
		Quantity:  quantity,
	}, nil
}

// ListedItem bridges an Item to the marketplace listings backing it. Price
// and quantity writes enroll the item in the owning Inventory's dirty sets;
// the marketplace is only touched when the Inventory reconciles.
//
// listingIDs order matters only when deleting: the trailing ids are the ones
// dropped.
type ListedItem struct {
	inventory *Inventory

	productID  string
	variantID  string
	styleID    string
	size       string
	price      float64
	quantity   int
	listingIDs []string
}

// ProductID returns the catalog product id.
func (li *ListedItem) ProductID() string { return li.productID }

// VariantID returns the catalog variant id.
func (li *ListedItem) VariantID() string { return li.variantID }

// StyleID returns the style id carried by the listings, if known.
func (li *ListedItem) StyleID() string { return li.styleID }

// Size returns the variant value carried by the listings, if known.
func (li *ListedItem) Size() string { return li.size }

// Price returns the current asking price.
func (li *ListedItem) Price() float64 { return li.price }

// Quantity returns the desired number of listings.
func (li *ListedItem) Quantity() int { return li.quantity }

// ListingIDs returns the marketplace listing ids currently backing the item.
func (li *ListedItem) ListingIDs() []string { return li.listingIDs }

// SetPrice changes the asking price and marks the item price-dirty. Setting
// the current price is a no-op.
func (li *ListedItem) SetPrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("item price must not be negative, got %v", price)
	}
	if price == li.price {
		return nil
	}

	li.price = price
	li.inventory.registerPriceChange(li)
	return nil
}

// SetQuantity changes the desired quantity and marks the item
// quantity-dirty. Setting the current quantity is a no-op.
func (li *ListedItem) SetQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("item quantity must not be negative, got %d", quantity)
	}
	if quantity == li.quantity {
		return nil
	}

	li.quantity = quantity
	li.inventory.registerQuantityChange(li)
	return nil
}

// QuantityToSync returns the listing count delta against the marketplace:
// positive means listings must be created, negative deleted, zero in sync.
func (li *ListedItem) QuantityToSync() int {
	return li.quantity - len(li.listingIDs)
}

// Payout returns the seller proceeds for the current price under the
// inventory's fee parameters.
func (li *ListedItem) Payout() float64 {
	return li.inventory.CalculatePayout(li.price)
}

// ListingSource is a typed stream of listings, satisfied by the api
// package's listing streams.
type ListingSource interface {
	Next(context.Context) bool
	Item() types.Listing
	Err() error
}

// ListedItemsFromListings drains a listing stream and groups it into
// ListedItems owned by inv. Listings sharing (variant id, amount) become one
// item whose quantity is the group size and whose listing ids keep arrival
// order. Item order follows first arrival per group.
func ListedItemsFromListings(ctx context.Context, inv *Inventory, listings ListingSource) ([]*ListedItem, error) {
	type groupKey struct {
		variantID string
		amount    float64
	}

	byKey := make(map[groupKey]*ListedItem)
	var items []*ListedItem

	for listings.Next(ctx) {
		listing := listings.Item()
		key := groupKey{
			variantID: listing.Variant.ID,
			amount:    float64(listing.Amount),
		}

		if item, ok := byKey[key]; ok {
			item.quantity++
			item.listingIDs = append(item.listingIDs, listing.ID)
			continue
		}

		item := &ListedItem{
			inventory:  inv,
			productID:  listing.Product.ID,
			variantID:  listing.Variant.ID,
			styleID:    listing.Product.StyleID,
			size:       listing.Variant.Value,
			price:      float64(listing.Amount),
			quantity:   1,
			listingIDs: []string{listing.ID},
		}
		byKey[key] = item
		items = append(items, item)
	}
	if err := listings.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
