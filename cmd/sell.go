package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockx-tools/stockroom/pkg/inventory"
	"github.com/stockx-tools/stockroom/pkg/journal"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Publish new listings for a variant",
	Long: `Create listings for a product variant through the batch endpoint
and wait for them to settle. The variant can be addressed directly by id or
resolved from a style id (SKU) and size.`,
	RunE: runSell,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	sellVariantID string
	sellSKU       string
	sellSize      string
	sellPrice     float64
	sellQuantity  int
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(sellCmd)
	sellCmd.Flags().StringVar(&sellVariantID, "variant", "", "Variant id to list")
	sellCmd.Flags().StringVar(&sellSKU, "sku", "", "Style id to resolve the product by (alternative to --variant)")
	sellCmd.Flags().StringVar(&sellSize, "size", "", "Size to select when resolving by --sku")
	sellCmd.Flags().Float64VarP(&sellPrice, "price", "p", 0, "Asking price")
	sellCmd.Flags().IntVarP(&sellQuantity, "quantity", "q", 1, "Number of listings to create")
	_ = sellCmd.MarkFlagRequired("price")
}

func runSell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, teardown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer teardown()

	productID, variantID, err := resolveVariant(cmd, rt)
	if err != nil {
		return err
	}

	item, err := inventory.NewItem(productID, variantID, sellPrice, sellQuantity)
	if err != nil {
		return err
	}

	listed, err := rt.inventory.Sell(ctx, []*inventory.Item{item})
	if err != nil {
		return fmt.Errorf("publish listings: %w", err)
	}

	for _, li := range listed {
		fmt.Printf("Listed %d x %s at %.2f %s\n",
			len(li.ListingIDs()), li.VariantID(), li.Price(), rt.inventory.Currency())
		err := rt.journal.RecordUpdate(ctx, journal.FromUpdateResult(&inventory.UpdateResult{
			Item:    li,
			Created: li.ListingIDs(),
		}))
		if err != nil {
			return fmt.Errorf("record sale: %w", err)
		}
	}
	return nil
}

// resolveVariant returns (product id, variant id) from --variant directly or
// by resolving --sku and --size through the catalog.
func resolveVariant(cmd *cobra.Command, rt *runtime) (string, string, error) {
	ctx := cmd.Context()

	if sellVariantID != "" {
		return "", sellVariantID, nil
	}
	if sellSKU == "" {
		return "", "", fmt.Errorf("either --variant or --sku is required")
	}

	product, err := rt.api.Catalog.ProductBySKU(ctx, sellSKU)
	if err != nil {
		return "", "", fmt.Errorf("resolve sku: %w", err)
	}
	if product == nil {
		return "", "", fmt.Errorf("no product found for sku %s", sellSKU)
	}

	variants, err := rt.api.Catalog.GetAllProductVariants(ctx, product.ID)
	if err != nil {
		return "", "", fmt.Errorf("fetch variants: %w", err)
	}
	for _, variant := range variants {
		if variant.Value == sellSize {
			return product.ID, variant.ID, nil
		}
	}
	return "", "", fmt.Errorf("no variant of %s with size %q", sellSKU, sellSize)
}
