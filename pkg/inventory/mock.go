package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Mock listing parameters. The price is deliberately far above market so the
// probe listing cannot be bought before it is deleted.
const (
	mockListingQuery  = "adidas"
	mockListingAmount = 1000

	mockOperationTimeout = 60 * time.Second
)

// WithMockListing creates a short-lived real listing, passes its detail
// (which carries the account's payout breakdown) to body, and always deletes
// the listing afterwards. Acquisition failure returns an error; deletion
// failure is logged and swallowed.
func WithMockListing(ctx context.Context, a *api.API, currency string, logger *zap.Logger, body func(*types.ListingDetail) error) error {
	search := a.Catalog.SearchCatalog(mockListingQuery, 1, 1)
	if !search.Next(ctx) {
		if err := search.Err(); err != nil {
			return fmt.Errorf("search mock product: %w", err)
		}
		return fmt.Errorf("no product found for mock listing")
	}
	product := search.Item()

	variants, err := a.Catalog.GetAllProductVariants(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("fetch mock variants: %w", err)
	}
	if len(variants) == 0 {
		return fmt.Errorf("product %s has no variants", product.ID)
	}

	create, err := a.Listings.CreateListing(ctx, &api.CreateListingInput{
		Amount:       mockListingAmount,
		VariantID:    variants[0].ID,
		CurrencyCode: currency,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create mock listing: %w", err)
	}

	succeeded, err := a.Listings.OperationSucceeded(ctx, create, mockOperationTimeout)
	if err != nil {
		return fmt.Errorf("await mock listing: %w", err)
	}
	if !succeeded {
		message := create.Error
		if message == "" {
			message = "unknown error"
		}
		return fmt.Errorf("create mock listing: %s", message)
	}

	defer func() {
		deleteOp, err := a.Listings.DeleteListing(ctx, create.ListingID)
		if err == nil {
			var deleted bool
			deleted, err = a.Listings.OperationSucceeded(ctx, deleteOp, mockOperationTimeout)
			if err == nil && !deleted {
				err = fmt.Errorf("delete operation failed: %s", deleteOp.Error)
			}
		}
		if err != nil {
			logger.Warn("mock-listing-delete-failed",
				zap.String("listing-id", create.ListingID),
				zap.Error(err))
		}
	}()

	detail, err := a.Listings.GetListing(ctx, create.ListingID)
	if err != nil {
		return fmt.Errorf("fetch mock listing: %w", err)
	}

	return body(detail)
}
