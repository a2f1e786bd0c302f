package types

// BatchOperationStatus is the overall state of a batch operation.
type BatchOperationStatus string

// Batch operation states.
const (
	BatchQueued     BatchOperationStatus = "QUEUED"
	BatchInProgress BatchOperationStatus = "IN_PROGRESS"
	BatchCompleted  BatchOperationStatus = "COMPLETED"
)

// BatchItemStatus is the state of a single item within a batch.
type BatchItemStatus string

// Batch item states.
const (
	BatchItemQueued    BatchItemStatus = "QUEUED"
	BatchItemCompleted BatchItemStatus = "COMPLETED"
	BatchItemFailed    BatchItemStatus = "FAILED"
)

// ItemStatuses is the per-status item count of a batch.
type ItemStatuses struct {
	Queued    int `json:"queued"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchStatus is the status report for a submitted batch.
type BatchStatus struct {
	BatchID      string               `json:"batchId"`
	Status       BatchOperationStatus `json:"status"`
	TotalItems   int                  `json:"totalItems"`
	ItemStatuses ItemStatuses         `json:"itemStatuses"`
	CreatedAt    Timestamp            `json:"createdAt"`
	UpdatedAt    Timestamp            `json:"updatedAt"`
	CompletedAt  Timestamp            `json:"completedAt"`
}

// Done reports whether every item in the batch reached a terminal state.
// The operation-level status alone is not reliable while items are still
// queued, so completion is judged on the item counts.
func (s *BatchStatus) Done() bool {
	return s.ItemStatuses.Completed+s.ItemStatuses.Failed == s.TotalItems
}

// BatchCreateInput is one create-listing entry of a batch submission.
// At most one input per (variantId, amount) may appear in a single batch;
// quantity carries the number of listings to create.
type BatchCreateInput struct {
	VariantID    string     `json:"variantId"`
	Amount       Amount     `json:"amount"`
	Quantity     int        `json:"quantity"`
	Active       bool       `json:"active"`
	CurrencyCode string     `json:"currencyCode,omitempty"`
	ExpiresAt    *Timestamp `json:"expiresAt,omitempty"`
}

// BatchUpdateInput is one update-listing entry of a batch submission.
// Updates are per-listing at the wire level.
type BatchUpdateInput struct {
	ListingID    string     `json:"listingId"`
	Amount       Amount     `json:"amount"`
	Active       *bool      `json:"active,omitempty"`
	CurrencyCode string     `json:"currencyCode,omitempty"`
	ExpiresAt    *Timestamp `json:"expiresAt,omitempty"`
}

// BatchDeleteInput is one delete-listing entry of a batch submission.
type BatchDeleteInput struct {
	ListingID string `json:"listingId"`
}

// BatchItemOutcome is the payload attached to a completed batch item.
type BatchItemOutcome struct {
	ListingID string `json:"listingId"`
	AskID     string `json:"askId"`
}

// BatchResult is the per-item outcome common to the three batch kinds.
// FAILED items carry a free-text error; COMPLETED items carry the listing ID
// they acted on.
type BatchResult interface {
	// ResultListingID returns the listing ID the item produced or acted on,
	// or "" if the item did not complete.
	ResultListingID() string
	// ErrorMessage returns the failure message, or "" on success.
	ErrorMessage() string
	// ItemStatus returns the item's batch state.
	ItemStatus() BatchItemStatus
}

// BatchCreateResult is the per-item outcome of a create batch.
type BatchCreateResult struct {
	ItemID       string            `json:"itemId"`
	Status       BatchItemStatus   `json:"status"`
	ListingInput BatchCreateInput  `json:"listingInput"`
	Result       *BatchItemOutcome `json:"result,omitempty"`
	Error        string            `json:"error"`
}

// ResultListingID implements BatchResult.
func (r *BatchCreateResult) ResultListingID() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.ListingID
}

// ErrorMessage implements BatchResult.
func (r *BatchCreateResult) ErrorMessage() string { return r.Error }

// ItemStatus implements BatchResult.
func (r *BatchCreateResult) ItemStatus() BatchItemStatus { return r.Status }

// BatchUpdateResult is the per-item outcome of an update batch.
type BatchUpdateResult struct {
	ItemID       string            `json:"itemId"`
	Status       BatchItemStatus   `json:"status"`
	ListingInput BatchUpdateInput  `json:"listingInput"`
	Result       *BatchItemOutcome `json:"result,omitempty"`
	Error        string            `json:"error"`
}

// ResultListingID implements BatchResult.
func (r *BatchUpdateResult) ResultListingID() string {
	if r.Result != nil && r.Result.ListingID != "" {
		return r.Result.ListingID
	}
	return r.ListingInput.ListingID
}

// ErrorMessage implements BatchResult.
func (r *BatchUpdateResult) ErrorMessage() string { return r.Error }

// ItemStatus implements BatchResult.
func (r *BatchUpdateResult) ItemStatus() BatchItemStatus { return r.Status }

// BatchDeleteResult is the per-item outcome of a delete batch.
type BatchDeleteResult struct {
	ItemID       string            `json:"itemId"`
	Status       BatchItemStatus   `json:"status"`
	ListingInput BatchDeleteInput  `json:"listingInput"`
	Result       *BatchItemOutcome `json:"result,omitempty"`
	Error        string            `json:"error"`
}

// ResultListingID implements BatchResult.
func (r *BatchDeleteResult) ResultListingID() string {
	if r.Result != nil && r.Result.ListingID != "" {
		return r.Result.ListingID
	}
	return r.ListingInput.ListingID
}

// ErrorMessage implements BatchResult.
func (r *BatchDeleteResult) ErrorMessage() string { return r.Error }

// ItemStatus implements BatchResult.
func (r *BatchDeleteResult) ItemStatus() BatchItemStatus { return r.Status }
