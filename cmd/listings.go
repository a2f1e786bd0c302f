package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "List your marketplace listings",
	Long: `Stream your listings from the marketplace and print one line per
listing. Use --status to filter by lifecycle state and --limit to cap the
scan.`,
	RunE: runListings,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	listingsStatus string
	listingsLimit  int
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listingsCmd)
	listingsCmd.Flags().StringVarP(&listingsStatus, "status", "s", "ACTIVE", "Listing status to filter by")
	listingsCmd.Flags().IntVarP(&listingsLimit, "limit", "l", 100, "Maximum number of listings to fetch (0 = all)")
}

func runListings(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, teardown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer teardown()

	stream := rt.api.Listings.GetAllListings(&api.ListingsQuery{
		Statuses: []types.ListingStatus{types.ListingStatus(listingsStatus)},
		Limit:    listingsLimit,
	})

	count := 0
	for stream.Next(ctx) {
		listing := stream.Item()
		fmt.Printf("%-38s %-10s %8d %s  %s (%s)\n",
			listing.ID,
			listing.Status,
			int(listing.Amount),
			listing.CurrencyCode,
			listing.Product.Name,
			listing.Variant.Value,
		)
		count++
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("stream listings: %w", err)
	}

	fmt.Printf("\n%d listings\n", count)
	return nil
}
