// Package api provides typed wrappers over the marketplace's selling,
// catalog, order and batch endpoints.
package api

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/cache"
	"github.com/stockx-tools/stockroom/pkg/client"
)

// API bundles the endpoint groups sharing one HTTP client.
type API struct {
	Catalog  *Catalog
	Listings *Listings
	Orders   *Orders
	Batch    *Batch
}

// New creates the endpoint groups over c. The catalog group memoizes
// product and variant lookups indefinitely and market data for 30 seconds.
func New(c *client.Client, logger *zap.Logger) (*API, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 40960,
		MaxCost:     4096,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}

	return &API{
		Catalog:  newCatalog(c, catalogCache, logger),
		Listings: &Listings{client: c, logger: logger},
		Orders:   &Orders{client: c},
		Batch:    &Batch{client: c, logger: logger},
	}, nil
}
