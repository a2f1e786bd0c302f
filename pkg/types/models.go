package types

import "strings"

// ListingStatus is the marketplace lifecycle state of a listing.
type ListingStatus string

// Listing lifecycle states.
const (
	ListingActive    ListingStatus = "ACTIVE"
	ListingInactive  ListingStatus = "INACTIVE"
	ListingCanceled  ListingStatus = "CANCELED"
	ListingMatched   ListingStatus = "MATCHED"
	ListingCompleted ListingStatus = "COMPLETED"
	ListingDeleted   ListingStatus = "DELETED"
)

// ProductAttributes carries the optional descriptive attributes of a product.
type ProductAttributes struct {
	Gender      string  `json:"gender"`
	Season      string  `json:"season"`
	ReleaseDate string  `json:"releaseDate"`
	RetailPrice float64 `json:"retailPrice"`
	Colorway    string  `json:"colorway"`
	Color       string  `json:"color"`
}

// Product is a catalog product.
type Product struct {
	ID         string             `json:"productId"`
	URLKey     string             `json:"urlKey"`
	StyleID    string             `json:"styleId"`
	Type       string             `json:"productType"`
	Title      string             `json:"title"`
	Brand      string             `json:"brand"`
	Attributes *ProductAttributes `json:"productAttributes,omitempty"`
}

// StyleIDs returns the product's style identifiers. Multi-valued style IDs
// are slash-separated on the wire.
func (p *Product) StyleIDs() []string {
	if p.StyleID == "" {
		return nil
	}
	return strings.Split(p.StyleID, "/")
}

// ProductRef is the short product reference embedded in listings and orders.
type ProductRef struct {
	ID      string `json:"productId"`
	Name    string `json:"productName"`
	StyleID string `json:"styleId"`
}

// Variant is a size/color/edition of a product.
type Variant struct {
	ID        string `json:"variantId"`
	ProductID string `json:"productId"`
	Name      string `json:"variantName"`
	Value     string `json:"variantValue"`
}

// VariantRef is the short variant reference embedded in listings and orders.
type VariantRef struct {
	ID    string `json:"variantId"`
	Name  string `json:"variantName"`
	Value string `json:"variantValue"`
}

// MarketData is the per-variant market snapshot: current asks, bids and the
// marketplace's suggested prices.
type MarketData struct {
	ProductID           string `json:"productId"`
	VariantID           string `json:"variantId"`
	CurrencyCode        string `json:"currencyCode"`
	LowestAskAmount     Amount `json:"lowestAskAmount"`
	HighestBidAmount    Amount `json:"highestBidAmount"`
	SellFasterAmount    Amount `json:"sellFasterAmount"`
	EarnMoreAmount      Amount `json:"earnMoreAmount"`
	FlexLowestAskAmount Amount `json:"flexLowestAskAmount"`
}

// Adjustment is a single payout line item (fee or cost).
type Adjustment struct {
	AdjustmentType string  `json:"adjustmentType"`
	Amount         float64 `json:"amount"`
	Percentage     float64 `json:"percentage"`
}

// Payout is the seller proceeds breakdown attached to listing and order
// details.
type Payout struct {
	TotalPayout      float64      `json:"totalPayout"`
	SalePrice        float64      `json:"salePrice"`
	TotalAdjustments float64      `json:"totalAdjustments"`
	CurrencyCode     string       `json:"currencyCode"`
	Adjustments      []Adjustment `json:"adjustments"`
}

// TransactionFee returns the transaction fee percentage from the payout
// adjustments, or 0 if absent.
func (p *Payout) TransactionFee() float64 {
	return p.adjustmentPercentage("Transaction Fee")
}

// PaymentFee returns the payment processing fee percentage from the payout
// adjustments, or 0 if absent.
func (p *Payout) PaymentFee() float64 {
	return p.adjustmentPercentage("Payment Proc")
}

// ShippingCost returns the flat shipping amount from the payout adjustments,
// or 0 if absent.
func (p *Payout) ShippingCost() float64 {
	for _, adj := range p.Adjustments {
		if strings.Contains(adj.AdjustmentType, "Shipping") {
			return adj.Amount
		}
	}
	return 0
}

func (p *Payout) adjustmentPercentage(kind string) float64 {
	for _, adj := range p.Adjustments {
		if strings.Contains(adj.AdjustmentType, kind) {
			return adj.Percentage
		}
	}
	return 0
}

// AuthenticationDetails carries the authentication outcome for matched
// listings.
type AuthenticationDetails struct {
	Status       string `json:"status"`
	FailureNotes string `json:"failureNotes"`
}

// OrderRef is the short order reference embedded in matched listings.
type OrderRef struct {
	Number    string    `json:"orderNumber"`
	Status    string    `json:"orderStatus"`
	CreatedAt Timestamp `json:"orderCreatedAt"`
}

// Shipment carries shipping details for an order.
type Shipment struct {
	TrackingNumber      string    `json:"trackingNumber"`
	ShipByDate          Timestamp `json:"shipByDate"`
	TrackingURL         string    `json:"trackingUrl"`
	CarrierCode         string    `json:"carrierCode"`
	ShippingLabelURL    string    `json:"shippingLabelUrl"`
	ShippingDocumentURL string    `json:"shippingDocumentUrl"`
}

// Order is a sales order.
type Order struct {
	Number                string                 `json:"orderNumber"`
	ListingID             string                 `json:"listingId"`
	Amount                Amount                 `json:"amount"`
	Status                string                 `json:"status"`
	CurrencyCode          string                 `json:"currencyCode"`
	Product               ProductRef             `json:"product"`
	Variant               *VariantRef            `json:"variant,omitempty"`
	AuthenticationDetails *AuthenticationDetails `json:"authenticationDetails,omitempty"`
	Payout                *Payout                `json:"payout,omitempty"`
	CreatedAt             Timestamp              `json:"createdAt"`
	UpdatedAt             Timestamp              `json:"updatedAt"`
}

// OrderDetail is an order with its shipment.
type OrderDetail struct {
	Order
	Shipment *Shipment `json:"shipment,omitempty"`
}

// OperationStatus is the state of a per-listing asynchronous operation.
type OperationStatus string

// Operation states.
const (
	OperationPending   OperationStatus = "PENDING"
	OperationSucceeded OperationStatus = "SUCCEEDED"
	OperationFailed    OperationStatus = "FAILED"
)

// Operation is a per-listing asynchronous action (create, update, delete,
// activate, deactivate) addressable by its operation ID.
type Operation struct {
	ListingID    string          `json:"listingId"`
	ID           string          `json:"operationId"`
	Type         string          `json:"operationType"`
	Status       OperationStatus `json:"operationStatus"`
	InitiatedBy  string          `json:"operationInitiatedBy"`
	InitiatedVia string          `json:"operationInitiatedVia"`
	Error        string          `json:"error"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
}

// Listing is one marketplace unit for sale; exactly one physical item.
type Listing struct {
	ID                    string                 `json:"listingId"`
	Status                ListingStatus          `json:"status"`
	Amount                Amount                 `json:"amount"`
	CurrencyCode          string                 `json:"currencyCode"`
	InventoryType         string                 `json:"inventoryType"`
	Product               ProductRef             `json:"product"`
	Variant               VariantRef             `json:"variant"`
	Order                 *OrderRef              `json:"order,omitempty"`
	AuthenticationDetails *AuthenticationDetails `json:"authenticationDetails,omitempty"`
	CreatedAt             Timestamp              `json:"createdAt"`
	UpdatedAt             Timestamp              `json:"updatedAt"`
}

// VariantValue returns the size/edition value of the listing's variant.
func (l *Listing) VariantValue() string {
	return l.Variant.Value
}

// StyleIDs returns the listing's style identifiers. Multi-valued style IDs
// are slash-separated on the wire.
func (l *Listing) StyleIDs() []string {
	if l.Product.StyleID == "" {
		return nil
	}
	return strings.Split(l.Product.StyleID, "/")
}

// ListingDetail is a listing with payout and last-operation information.
type ListingDetail struct {
	Listing
	Payout        *Payout    `json:"payout,omitempty"`
	LastOperation *Operation `json:"lastOperation,omitempty"`
}
