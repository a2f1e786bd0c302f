package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Fallback fee parameters, matching the marketplace's entry seller level.
// LoadFees replaces them with the account's actual fees.
const (
	defaultCurrency       = "EUR"
	defaultShippingFee    = 7.0
	defaultMinimumTxnFee  = 5.0
	defaultTransactionFee = 0.09
	defaultPaymentFee     = 0.03
)

// How many active listings LoadFees scans for a payout before falling back
// to a probe listing.
const feeProbeDepth = 100

// Config holds configuration for an Inventory.
type Config struct {
	API    *api.API
	Logger *zap.Logger

	Currency              string
	ShippingFee           float64
	MinimumTransactionFee float64
	TransactionFee        float64 // fraction of the sale price
	PaymentFee            float64 // fraction of the sale price

	BatchSize    int
	BatchTimeout time.Duration
}

// Inventory is the logical stock ledger: it issues ListedItems, tracks which
// of them drifted from the marketplace, and reconciles the drift in batches.
// It also owns the account's fee parameters for payout math.
type Inventory struct {
	api    *api.API
	logger *zap.Logger

	currency     string
	batchSize    int
	batchTimeout time.Duration

	shippingFee    float64
	minimumTxnFee  float64
	transactionFee float64
	paymentFee     float64

	mu            sync.Mutex
	priceDirty    map[*ListedItem]struct{}
	quantityDirty map[*ListedItem]struct{}
}

// New creates an Inventory from cfg. Zero-valued fee parameters fall back to
// the entry seller level; call LoadFees to discover the account's actual
// fees.
func New(cfg *Config) *Inventory {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	currency := cfg.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	shippingFee := cfg.ShippingFee
	if shippingFee == 0 {
		shippingFee = defaultShippingFee
	}
	minimumTxnFee := cfg.MinimumTransactionFee
	if minimumTxnFee == 0 {
		minimumTxnFee = defaultMinimumTxnFee
	}
	transactionFee := cfg.TransactionFee
	if transactionFee == 0 {
		transactionFee = defaultTransactionFee
	}
	paymentFee := cfg.PaymentFee
	if paymentFee == 0 {
		paymentFee = defaultPaymentFee
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 60 * time.Second
	}

	return &Inventory{
		api:            cfg.API,
		logger:         logger,
		currency:       currency,
		batchSize:      batchSize,
		batchTimeout:   batchTimeout,
		shippingFee:    shippingFee,
		minimumTxnFee:  minimumTxnFee,
		transactionFee: transactionFee,
		paymentFee:     paymentFee,
		priceDirty:     make(map[*ListedItem]struct{}),
		quantityDirty:  make(map[*ListedItem]struct{}),
	}
}

// Currency returns the inventory's currency code.
func (inv *Inventory) Currency() string { return inv.currency }

// LoadFees discovers the account's transaction and payment fees. It scans
// the first active listings for a payout breakdown and, failing that, probes
// with a short-lived mock listing.
func (inv *Inventory) LoadFees(ctx context.Context) error {
	stream := inv.api.Listings.GetAllListings(&api.ListingsQuery{
		Statuses: []types.ListingStatus{types.ListingActive},
		Limit:    feeProbeDepth,
		PageSize: feeProbeDepth,
	})
	for stream.Next(ctx) {
		listing := stream.Item()
		detail, err := inv.api.Listings.GetListing(ctx, listing.ID)
		if err != nil {
			return err
		}
		if detail.Payout != nil && inv.adoptFees(detail.Payout) {
			return nil
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}

	var adopted bool
	err := WithMockListing(ctx, inv.api, inv.currency, inv.logger,
		func(detail *types.ListingDetail) error {
			if detail.Payout != nil {
				adopted = inv.adoptFees(detail.Payout)
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("probe fees: %w", err)
	}
	if !adopted {
		return fmt.Errorf("unable to load fees, default fee level applied")
	}
	return nil
}

func (inv *Inventory) adoptFees(payout *types.Payout) bool {
	transactionFee := payout.TransactionFee()
	paymentFee := payout.PaymentFee()
	if transactionFee == 0 && paymentFee == 0 {
		return false
	}

	inv.transactionFee = transactionFee
	inv.paymentFee = paymentFee
	inv.logger.Info("fees-loaded",
		zap.Float64("transaction-fee", transactionFee),
		zap.Float64("payment-fee", paymentFee))
	return true
}

// CalculatePayout returns the seller proceeds for a sale at amount: the
// price minus the transaction fee (subject to its floor), the payment fee
// and shipping.
func (inv *Inventory) CalculatePayout(amount float64) float64 {
	transactionFee := inv.transactionFee * amount
	if transactionFee < inv.minimumTxnFee {
		transactionFee = inv.minimumTxnFee
	}
	return amount - transactionFee - inv.paymentFee*amount - inv.shippingFee
}

// Items starts a query over the inventory's active marketplace listings.
func (inv *Inventory) Items() *ItemsQuery {
	return newItemsQuery(inv)
}

// GetItemMarketData fetches the market snapshot of the item's variant with
// payouts precomputed under the inventory's fees. Snapshots are cached
// briefly by the catalog layer.
func (inv *Inventory) GetItemMarketData(ctx context.Context, item *ListedItem) (*ItemMarketData, error) {
	market, err := inv.api.Catalog.GetVariantMarketData(
		ctx, item.ProductID(), item.VariantID(), inv.currency)
	if err != nil {
		return nil, err
	}
	return newItemMarketData(market, inv.CalculatePayout), nil
}

func (inv *Inventory) registerPriceChange(item *ListedItem) {
	inv.mu.Lock()
	inv.priceDirty[item] = struct{}{}
	inv.mu.Unlock()
}

func (inv *Inventory) registerQuantityChange(item *ListedItem) {
	inv.mu.Lock()
	inv.quantityDirty[item] = struct{}{}
	inv.mu.Unlock()
}

func (inv *Inventory) snapshotDirty() (quantity, price []*ListedItem) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for item := range inv.quantityDirty {
		quantity = append(quantity, item)
	}
	for item := range inv.priceDirty {
		price = append(price, item)
	}
	return quantity, price
}

func (inv *Inventory) clearDirty() {
	inv.mu.Lock()
	inv.priceDirty = make(map[*ListedItem]struct{})
	inv.quantityDirty = make(map[*ListedItem]struct{})
	inv.mu.Unlock()
}

func (inv *Inventory) dropPriceDirty(items []*ListedItem) {
	inv.mu.Lock()
	for _, item := range items {
		delete(inv.priceDirty, item)
	}
	inv.mu.Unlock()
}

// Update flushes every dirty item: quantity reconciliation first, then price
// reconciliation, and returns the consolidated per-item results. The dirty
// sets are cleared only on full success; when any internal batch times out
// an IncompleteOperationError carries the settled partial results and the
// sets are left intact so the caller can retry.
func (inv *Inventory) Update(ctx context.Context) ([]UpdateResult, error) {
	quantityItems, priceItems := inv.snapshotDirty()
	ReconciliationsTotal.Inc()

	quantityResults, quantityTimedOut, err := inv.updateQuantity(ctx, quantityItems)
	if err != nil {
		return nil, err
	}

	priceResults, priceTimedOut, err := inv.updateListings(ctx, priceItems)
	if err != nil {
		return nil, err
	}

	consolidated := Consolidate(append(quantityResults, priceResults...))

	timedOut := append(quantityTimedOut, priceTimedOut...)
	if len(timedOut) > 0 {
		ReconciliationTimeoutsTotal.Inc()
		inv.logger.Warn("inventory-update-incomplete",
			zap.Int("timed-out-batches", len(timedOut)))
		return nil, &IncompleteOperationError{
			PartialResults:   consolidated,
			TimedOutBatchIDs: timedOut,
		}
	}

	inv.clearDirty()
	inv.logger.Info("inventory-updated",
		zap.Int("items", len(consolidated)))
	return consolidated, nil
}

// Sell publishes brand-new items and returns the ListedItems now backing
// them. Items sharing (variant, price) are coalesced into one create input.
func (inv *Inventory) Sell(ctx context.Context, items []*Item) ([]*ListedItem, error) {
	listed := make([]*ListedItem, 0, len(items))
	for _, item := range items {
		listed = append(listed, &ListedItem{
			inventory: inv,
			productID: item.ProductID,
			variantID: item.VariantID,
			price:     item.Price,
			quantity:  item.Quantity,
		})
	}

	results, timedOut, err := inv.createListings(ctx, coalesce(listed, false))
	if err != nil {
		return nil, err
	}
	if len(timedOut) > 0 {
		return nil, &IncompleteOperationError{
			PartialResults:   Consolidate(results),
			TimedOutBatchIDs: timedOut,
		}
	}

	var sold []*ListedItem
	for _, result := range results {
		if len(result.Created) == 0 {
			continue
		}
		result.Item.listingIDs = append(result.Item.listingIDs, result.Created...)
		sold = append(sold, result.Item)
	}
	return sold, nil
}

// ChangePrice sets a new price on every item matching the condition and
// pushes the change to the marketplace immediately. Repriced items leave the
// price-dirty set; their update is no longer pending.
func (inv *Inventory) ChangePrice(ctx context.Context, items []*ListedItem, newPrice Amount, condition Condition) ([]UpdateResult, error) {
	if condition == nil {
		condition = Always
	}

	var selected []*ListedItem
	for _, item := range items {
		ok, err := condition.holds(ctx, item)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, item)
		}
	}

	for _, item := range selected {
		price, err := newPrice.amount(ctx, item)
		if err != nil {
			return nil, err
		}
		if err := item.SetPrice(price); err != nil {
			return nil, err
		}
	}

	results, timedOut, err := inv.updateListings(ctx, selected)
	if err != nil {
		return nil, err
	}
	if len(timedOut) > 0 {
		return nil, &IncompleteOperationError{
			PartialResults:   Consolidate(results),
			TimedOutBatchIDs: timedOut,
		}
	}

	inv.dropPriceDirty(selected)
	return Consolidate(results), nil
}

// BeatLowestAsk reprices matching items to undercut the current lowest ask
// by beatBy, absolute or percentage.
func (inv *Inventory) BeatLowestAsk(ctx context.Context, items []*ListedItem, beatBy Amount, percentage bool, condition Condition) ([]UpdateResult, error) {
	return inv.beatMarketValue(ctx, items,
		func(m *ItemMarketData) *MarketValue { return m.LowestAsk },
		beatBy, percentage, condition)
}

// BeatSellFaster reprices matching items against the marketplace's Sell
// Faster suggestion.
func (inv *Inventory) BeatSellFaster(ctx context.Context, items []*ListedItem, beatBy Amount, percentage bool, condition Condition) ([]UpdateResult, error) {
	return inv.beatMarketValue(ctx, items,
		func(m *ItemMarketData) *MarketValue { return m.SellFaster },
		beatBy, percentage, condition)
}

// BeatEarnMore reprices matching items against the marketplace's Earn More
// suggestion.
func (inv *Inventory) BeatEarnMore(ctx context.Context, items []*ListedItem, beatBy Amount, percentage bool, condition Condition) ([]UpdateResult, error) {
	return inv.beatMarketValue(ctx, items,
		func(m *ItemMarketData) *MarketValue { return m.EarnMore },
		beatBy, percentage, condition)
}

func (inv *Inventory) beatMarketValue(
	ctx context.Context,
	items []*ListedItem,
	marketValue func(*ItemMarketData) *MarketValue,
	beatBy Amount,
	percentage bool,
	condition Condition,
) ([]UpdateResult, error) {
	if beatBy == nil {
		beatBy = FixedAmount(0)
	}

	newPrice := AmountContextFunc(func(ctx context.Context, item *ListedItem) (float64, error) {
		change, err := beatBy.amount(ctx, item)
		if err != nil {
			return 0, err
		}

		market, err := inv.GetItemMarketData(ctx, item)
		if err != nil {
			return 0, err
		}

		value := marketValue(market)
		if value == nil {
			// No market value to beat; keep the current price.
			return item.Price(), nil
		}

		if percentage {
			return value.Amount * (1 - change), nil
		}
		return value.Amount - change, nil
	})

	return inv.ChangePrice(ctx, items, newPrice, condition)
}
