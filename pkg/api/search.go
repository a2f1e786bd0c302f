package api

import (
	"context"
	"strings"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// How deep a convenience search scans before declaring the product absent.
const searchDepth = 50

// ProductBySKU searches the catalog for the product carrying the given style
// id. Returns nil when no product within the search depth matches; the
// outcome is memoized either way.
func (c *Catalog) ProductBySKU(ctx context.Context, sku string) (*types.Product, error) {
	return c.searches.Do(ctx, "sku:"+sku, func(ctx context.Context) (*types.Product, error) {
		stream := c.SearchCatalog(sku, searchDepth, searchDepth)
		for stream.Next(ctx) {
			product := stream.Item()
			for _, styleID := range product.StyleIDs() {
				if strings.EqualFold(styleID, sku) {
					return &product, nil
				}
			}
		}
		return nil, stream.Err()
	})
}

// ProductByURL resolves a marketplace product page URL to its product. The
// trailing path segment is the product's url key, which doubles as a search
// query.
func (c *Catalog) ProductByURL(ctx context.Context, pageURL string) (*types.Product, error) {
	slug := pageURL
	slug = strings.TrimRight(slug, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}

	return c.searches.Do(ctx, "url:"+slug, func(ctx context.Context) (*types.Product, error) {
		stream := c.SearchCatalog(slug, searchDepth, searchDepth)
		for stream.Next(ctx) {
			product := stream.Item()
			if strings.EqualFold(product.URLKey, slug) {
				return &product, nil
			}
		}
		return nil, stream.Err()
	})
}
