package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Listings wraps the single-listing selling endpoints. Every mutation is
// asynchronous on the marketplace side and returns an Operation to poll.
type Listings struct {
	client *client.Client
	logger *zap.Logger
}

// CreateListingInput is the payload for creating one listing.
type CreateListingInput struct {
	Amount       types.Amount     `json:"amount"`
	VariantID    string           `json:"variantId"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
	Active       bool             `json:"active"`
	ExpiresAt    *types.Timestamp `json:"expiresAt,omitempty"`
}

// UpdateListingInput is the payload for amending one listing. Nil fields are
// left unchanged.
type UpdateListingInput struct {
	Amount       *types.Amount    `json:"amount,omitempty"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	ExpiresAt    *types.Timestamp `json:"expiresAt,omitempty"`
}

// ListingsQuery filters a listings scan. Zero-valued fields impose no
// constraint.
type ListingsQuery struct {
	ProductIDs     []string
	VariantIDs     []string
	FromDate       time.Time
	ToDate         time.Time
	Statuses       []types.ListingStatus
	InventoryTypes []string

	Limit    int // total result cap; 0 = unlimited
	PageSize int
	Reverse  bool // newest-first scan from a one-shot count snapshot
}

func (q *ListingsQuery) params() map[string]string {
	params := map[string]string{
		"productIds": strings.Join(q.ProductIDs, ","),
		"variantIds": strings.Join(q.VariantIDs, ","),
	}
	if !q.FromDate.IsZero() {
		params["fromDate"] = types.FormatDate(q.FromDate)
	}
	if !q.ToDate.IsZero() {
		params["toDate"] = types.FormatDate(q.ToDate)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, status := range q.Statuses {
			statuses[i] = string(status)
		}
		params["listingStatuses"] = strings.Join(statuses, ",")
	}
	if len(q.InventoryTypes) > 0 {
		params["inventoryTypes"] = strings.Join(q.InventoryTypes, ",")
	}
	return params
}

// GetListing fetches one listing with payout and last-operation details.
func (l *Listings) GetListing(ctx context.Context, listingID string) (*types.ListingDetail, error) {
	response, err := l.client.Get(ctx, "/selling/listings/"+listingID, nil)
	if err != nil {
		return nil, err
	}

	var detail types.ListingDetail
	err = json.Unmarshal(response.Data, &detail)
	if err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}
	return &detail, nil
}

// GetAllListings streams the seller's listings matching the query.
func (l *Listings) GetAllListings(q *ListingsQuery) *Stream[types.Listing] {
	return newStream[types.Listing](l.client.Pages(client.PageQuery{
		Endpoint:   "/selling/listings",
		ResultsKey: "listings",
		Params:     q.params(),
		Limit:      q.Limit,
		PageSize:   q.PageSize,
		Reverse:    q.Reverse,
	}))
}

// CreateListing submits one new listing and returns the pending operation.
func (l *Listings) CreateListing(ctx context.Context, input *CreateListingInput) (*types.Operation, error) {
	response, err := l.client.Post(ctx, "/selling/listings", input)
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// ActivateListing turns an inactive listing into a live ask at the given
// price.
func (l *Listings) ActivateListing(ctx context.Context, listingID string, amount types.Amount, currency string) (*types.Operation, error) {
	body := map[string]any{
		"amount":       amount,
		"currencyCode": currency,
	}
	response, err := l.client.Put(ctx, "/selling/listings/"+listingID+"/activate", body)
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// DeactivateListing takes a live ask off the market without deleting it.
func (l *Listings) DeactivateListing(ctx context.Context, listingID string) (*types.Operation, error) {
	response, err := l.client.Put(ctx, "/selling/listings/"+listingID+"/deactivate", struct{}{})
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// UpdateListing amends a listing in place.
func (l *Listings) UpdateListing(ctx context.Context, listingID string, input *UpdateListingInput) (*types.Operation, error) {
	response, err := l.client.Patch(ctx, "/selling/listings/"+listingID, input)
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// DeleteListing removes a listing permanently.
func (l *Listings) DeleteListing(ctx context.Context, listingID string) (*types.Operation, error) {
	response, err := l.client.Delete(ctx, "/selling/listings/"+listingID)
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// GetListingOperation fetches the current state of one operation.
func (l *Listings) GetListingOperation(ctx context.Context, listingID, operationID string) (*types.Operation, error) {
	endpoint := "/selling/listings/" + listingID + "/operations/" + operationID
	response, err := l.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeOperation(response.Data)
}

// GetAllListingOperations streams the operation history of a listing, newest
// first.
func (l *Listings) GetAllListingOperations(listingID string, limit int) *Stream[types.Operation] {
	return newStream[types.Operation](l.client.Cursor(client.PageQuery{
		Endpoint:   "/selling/listings/" + listingID + "/operations",
		ResultsKey: "operations",
		Limit:      limit,
	}))
}

// AwaitOperation polls an operation until it leaves PENDING, sleeping with
// doubling backoff. It fails with OperationTimeoutError once the budget is
// spent.
func (l *Listings) AwaitOperation(ctx context.Context, op *types.Operation, timeout time.Duration) (*types.Operation, error) {
	sleep := time.Second
	var waited time.Duration

	current := op
	for waited <= timeout {
		if current.Status != types.OperationPending {
			return current, nil
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		waited += sleep
		sleep = minDuration(sleep*2, timeout-waited)

		refreshed, err := l.GetListingOperation(ctx, op.ListingID, op.ID)
		if err != nil {
			return nil, err
		}
		current = refreshed

		OperationPollsTotal.Inc()
		if sleep <= 0 {
			break
		}
	}

	if current.Status != types.OperationPending {
		return current, nil
	}

	l.logger.Warn("operation-await-timeout",
		zap.String("listing-id", op.ListingID),
		zap.String("operation-id", op.ID))
	return nil, &types.OperationTimeoutError{OperationID: op.ID}
}

// OperationSucceeded waits for an operation to settle and reports whether it
// succeeded.
func (l *Listings) OperationSucceeded(ctx context.Context, op *types.Operation, timeout time.Duration) (bool, error) {
	settled, err := l.AwaitOperation(ctx, op, timeout)
	if err != nil {
		return false, err
	}
	return settled.Status == types.OperationSucceeded, nil
}

func decodeOperation(data json.RawMessage) (*types.Operation, error) {
	var op types.Operation
	err := json.Unmarshal(data, &op)
	if err != nil {
		return nil, fmt.Errorf("unmarshal operation: %w", err)
	}
	return &op, nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
