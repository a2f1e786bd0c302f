package inventory

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// sliceListings serves a fixed slice as a ListingSource.
type sliceListings struct {
	listings []types.Listing
	index    int
	err      error
}

func (s *sliceListings) Next(context.Context) bool {
	if s.err != nil || s.index >= len(s.listings) {
		return false
	}
	s.index++
	return true
}

func (s *sliceListings) Item() types.Listing { return s.listings[s.index-1] }

func (s *sliceListings) Err() error { return s.err }

func activeListing(id, productID, variantID, styleID, size string, amount types.Amount) types.Listing {
	return types.Listing{
		ID:      id,
		Status:  types.ListingActive,
		Amount:  amount,
		Product: types.ProductRef{ID: productID, StyleID: styleID},
		Variant: types.VariantRef{ID: variantID, Value: size},
	}
}

func TestNewItem(t *testing.T) {
	if _, err := NewItem("p1", "v1", -1, 1); err == nil {
		t.Error("expected error for negative price")
	}
	if _, err := NewItem("p1", "v1", 100, -1); err == nil {
		t.Error("expected error for negative quantity")
	}

	item, err := NewItem("p1", "v1", 100, 2)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if item.VariantID != "v1" || item.Quantity != 2 {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestListedItem_SetPrice(t *testing.T) {
	inv := New(&Config{})
	item := &ListedItem{inventory: inv, price: 100}

	t.Run("no-op-on-same-price", func(t *testing.T) {
		if err := item.SetPrice(100); err != nil {
			t.Fatalf("set price: %v", err)
		}
		if _, price := inv.snapshotDirty(); len(price) != 0 {
			t.Error("setting the current price must not dirty the item")
		}
	})

	t.Run("enrolls-dirty", func(t *testing.T) {
		if err := item.SetPrice(90); err != nil {
			t.Fatalf("set price: %v", err)
		}
		if item.Price() != 90 {
			t.Errorf("expected 90, got %v", item.Price())
		}
		_, price := inv.snapshotDirty()
		if len(price) != 1 || price[0] != item {
			t.Error("expected the item in the price-dirty set")
		}
	})

	t.Run("negative-rejected", func(t *testing.T) {
		if err := item.SetPrice(-5); err == nil {
			t.Error("expected error for negative price")
		}
	})
}

func TestListedItem_SetQuantity(t *testing.T) {
	inv := New(&Config{})
	item := &ListedItem{inventory: inv, quantity: 2, listingIDs: []string{"L1", "L2"}}

	if err := item.SetQuantity(2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if quantity, _ := inv.snapshotDirty(); len(quantity) != 0 {
		t.Error("setting the current quantity must not dirty the item")
	}

	if err := item.SetQuantity(5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	quantity, _ := inv.snapshotDirty()
	if len(quantity) != 1 || quantity[0] != item {
		t.Error("expected the item in the quantity-dirty set")
	}
	if item.QuantityToSync() != 3 {
		t.Errorf("expected delta 3, got %d", item.QuantityToSync())
	}

	if err := item.SetQuantity(-1); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestListedItem_Payout(t *testing.T) {
	inv := New(&Config{
		ShippingFee:           7,
		MinimumTransactionFee: 5,
		TransactionFee:        0.09,
		PaymentFee:            0.03,
	})

	t.Run("percentage-fee", func(t *testing.T) {
		item := &ListedItem{inventory: inv, price: 100}
		// 100 - 9 - 3 - 7
		if got := item.Payout(); math.Abs(got-81) > 1e-9 {
			t.Errorf("expected 81, got %v", got)
		}
	})

	t.Run("minimum-fee-floor", func(t *testing.T) {
		item := &ListedItem{inventory: inv, price: 20}
		// 20 - 5 (floor) - 0.6 - 7
		if got := item.Payout(); math.Abs(got-7.4) > 1e-9 {
			t.Errorf("expected 7.4, got %v", got)
		}
	})
}

func TestListedItemsFromListings(t *testing.T) {
	inv := New(&Config{})
	source := &sliceListings{listings: []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 120),
		activeListing("L2", "p1", "v2", "DD1391-100", "10", 120),
		activeListing("L3", "p1", "v1", "DD1391-100", "9", 120),
		activeListing("L4", "p1", "v1", "DD1391-100", "9", 95),
	}}

	items, err := ListedItemsFromListings(context.Background(), inv, source)
	if err != nil {
		t.Fatalf("from listings: %v", err)
	}

	// L1 and L3 share (v1, 120); L2 and L4 differ by variant and price.
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.VariantID() != "v1" || first.Price() != 120 {
		t.Errorf("unexpected first item %+v", first)
	}
	if first.Quantity() != 2 {
		t.Errorf("expected grouped quantity 2, got %d", first.Quantity())
	}
	if !reflect.DeepEqual(first.ListingIDs(), []string{"L1", "L3"}) {
		t.Errorf("listing ids must keep arrival order, got %v", first.ListingIDs())
	}
	if first.QuantityToSync() != 0 {
		t.Errorf("freshly aggregated items are in sync, got delta %d", first.QuantityToSync())
	}
	if first.StyleID() != "DD1391-100" || first.Size() != "9" {
		t.Errorf("unexpected style/size %s/%s", first.StyleID(), first.Size())
	}

	if items[1].VariantID() != "v2" || items[2].Price() != 95 {
		t.Errorf("unexpected grouping %+v %+v", items[1], items[2])
	}
}
