package inventory

import (
	"context"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// MarketValue pairs a market price with the payout it would yield under the
// inventory's fees.
type MarketValue struct {
	Amount float64
	Payout float64
}

// ItemMarketData is the market snapshot of one item's variant with payouts
// precomputed. Absent values are nil.
type ItemMarketData struct {
	Currency      string
	LowestAsk     *MarketValue
	HighestBid    *MarketValue
	EarnMore      *MarketValue
	SellFaster    *MarketValue
	FlexLowestAsk *MarketValue
}

func newItemMarketData(market *types.MarketData, payout func(float64) float64) *ItemMarketData {
	value := func(amount types.Amount) *MarketValue {
		if amount == 0 {
			return nil
		}
		return &MarketValue{
			Amount: float64(amount),
			Payout: payout(float64(amount)),
		}
	}

	return &ItemMarketData{
		Currency:      market.CurrencyCode,
		LowestAsk:     value(market.LowestAskAmount),
		HighestBid:    value(market.HighestBidAmount),
		EarnMore:      value(market.EarnMoreAmount),
		SellFaster:    value(market.SellFasterAmount),
		FlexLowestAsk: value(market.FlexLowestAskAmount),
	}
}

// Amount yields a price for an item: either a literal or a per-item
// computation. The three forms are dispatched uniformly by the strategies
// that accept an Amount.
type Amount interface {
	amount(ctx context.Context, item *ListedItem) (float64, error)
}

// FixedAmount is a literal Amount.
type FixedAmount float64

func (a FixedAmount) amount(context.Context, *ListedItem) (float64, error) {
	return float64(a), nil
}

// AmountFunc computes an Amount from the item alone.
type AmountFunc func(*ListedItem) float64

func (f AmountFunc) amount(_ context.Context, item *ListedItem) (float64, error) {
	return f(item), nil
}

// AmountContextFunc computes an Amount with access to the context, e.g. for
// market data lookups.
type AmountContextFunc func(context.Context, *ListedItem) (float64, error)

func (f AmountContextFunc) amount(ctx context.Context, item *ListedItem) (float64, error) {
	return f(ctx, item)
}

// Condition gates a strategy per item: either a literal or a per-item
// predicate.
type Condition interface {
	holds(ctx context.Context, item *ListedItem) (bool, error)
}

// FixedCondition is a literal Condition.
type FixedCondition bool

// Always applies a strategy to every item.
const Always = FixedCondition(true)

func (c FixedCondition) holds(context.Context, *ListedItem) (bool, error) {
	return bool(c), nil
}

// ConditionFunc decides from the item alone.
type ConditionFunc func(*ListedItem) bool

func (f ConditionFunc) holds(_ context.Context, item *ListedItem) (bool, error) {
	return f(item), nil
}

// ConditionContextFunc decides with access to the context.
type ConditionContextFunc func(context.Context, *ListedItem) (bool, error)

func (f ConditionContextFunc) holds(ctx context.Context, item *ListedItem) (bool, error) {
	return f(ctx, item)
}
