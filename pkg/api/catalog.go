package api

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/cache"
	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Market data moves with the order book, so it is memoized only briefly.
// Products and variants are immutable for our purposes and cached for the
// process lifetime.
const marketDataTTL = 30 * time.Second

// Catalog wraps the product catalog endpoints. Lookups are memoized; use a
// fresh Catalog when stale reads are unacceptable.
type Catalog struct {
	client *client.Client
	logger *zap.Logger

	products      *cache.Keyed[*types.Product]
	variants      *cache.Keyed[[]types.Variant]
	variant       *cache.Keyed[*types.Variant]
	variantMarket *cache.Keyed[*types.MarketData]
	productMarket *cache.Keyed[[]types.MarketData]
	searches      *cache.Keyed[*types.Product]
}

func newCatalog(c *client.Client, store cache.Cache, logger *zap.Logger) *Catalog {
	return &Catalog{
		client:        c,
		logger:        logger,
		products:      cache.NewKeyed[*types.Product](store, 0),
		variants:      cache.NewKeyed[[]types.Variant](store, 0),
		variant:       cache.NewKeyed[*types.Variant](store, 0),
		variantMarket: cache.NewKeyed[*types.MarketData](store, marketDataTTL),
		productMarket: cache.NewKeyed[[]types.MarketData](store, marketDataTTL),
		searches:      cache.NewKeyed[*types.Product](store, 0),
	}
}

// GetProduct fetches a product by its catalog id.
func (c *Catalog) GetProduct(ctx context.Context, productID string) (*types.Product, error) {
	return c.products.Do(ctx, "product:"+productID, func(ctx context.Context) (*types.Product, error) {
		response, err := c.client.Get(ctx, "/catalog/products/"+productID, nil)
		if err != nil {
			return nil, err
		}

		var product types.Product
		err = json.Unmarshal(response.Data, &product)
		if err != nil {
			return nil, fmt.Errorf("unmarshal product: %w", err)
		}
		return &product, nil
	})
}

// GetAllProductVariants fetches every variant of a product.
func (c *Catalog) GetAllProductVariants(ctx context.Context, productID string) ([]types.Variant, error) {
	return c.variants.Do(ctx, "variants:"+productID, func(ctx context.Context) ([]types.Variant, error) {
		response, err := c.client.Get(ctx, "/catalog/products/"+productID+"/variants", nil)
		if err != nil {
			return nil, err
		}

		var variants []types.Variant
		err = json.Unmarshal(response.Data, &variants)
		if err != nil {
			return nil, fmt.Errorf("unmarshal variants: %w", err)
		}
		return variants, nil
	})
}

// GetProductVariant fetches a single variant of a product.
func (c *Catalog) GetProductVariant(ctx context.Context, productID, variantID string) (*types.Variant, error) {
	key := "variant:" + productID + ":" + variantID
	return c.variant.Do(ctx, key, func(ctx context.Context) (*types.Variant, error) {
		endpoint := "/catalog/products/" + productID + "/variants/" + variantID
		response, err := c.client.Get(ctx, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var variant types.Variant
		err = json.Unmarshal(response.Data, &variant)
		if err != nil {
			return nil, fmt.Errorf("unmarshal variant: %w", err)
		}
		return &variant, nil
	})
}

// GetVariantMarketData fetches the current bid/ask snapshot for one variant
// in the given currency.
func (c *Catalog) GetVariantMarketData(ctx context.Context, productID, variantID, currency string) (*types.MarketData, error) {
	key := "market:" + productID + ":" + variantID + ":" + currency
	return c.variantMarket.Do(ctx, key, func(ctx context.Context) (*types.MarketData, error) {
		endpoint := "/catalog/products/" + productID + "/variants/" + variantID + "/market-data"
		response, err := c.client.Get(ctx, endpoint, map[string]string{
			"currencyCode": currency,
		})
		if err != nil {
			return nil, err
		}

		var market types.MarketData
		err = json.Unmarshal(response.Data, &market)
		if err != nil {
			return nil, fmt.Errorf("unmarshal market data: %w", err)
		}
		return &market, nil
	})
}

// GetProductMarketData fetches the market snapshot of every variant of a
// product in the given currency.
func (c *Catalog) GetProductMarketData(ctx context.Context, productID, currency string) ([]types.MarketData, error) {
	key := "market:" + productID + ":" + currency
	return c.productMarket.Do(ctx, key, func(ctx context.Context) ([]types.MarketData, error) {
		endpoint := "/catalog/products/" + productID + "/market-data"
		response, err := c.client.Get(ctx, endpoint, map[string]string{
			"currencyCode": currency,
		})
		if err != nil {
			return nil, err
		}

		var markets []types.MarketData
		err = json.Unmarshal(response.Data, &markets)
		if err != nil {
			return nil, fmt.Errorf("unmarshal market data: %w", err)
		}
		return markets, nil
	})
}

// SearchCatalog streams products matching a free-text query. Limit 0 streams
// every match.
func (c *Catalog) SearchCatalog(query string, limit, pageSize int) *Stream[types.Product] {
	return newStream[types.Product](c.client.Pages(client.PageQuery{
		Endpoint:   "/catalog/search",
		ResultsKey: "products",
		Params:     map[string]string{"query": query},
		Limit:      limit,
		PageSize:   pageSize,
	}))
}
