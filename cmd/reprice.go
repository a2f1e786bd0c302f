package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockx-tools/stockroom/pkg/inventory"
	"github.com/stockx-tools/stockroom/pkg/journal"
)

//nolint:gochecknoglobals // Cobra boilerplate
var repriceCmd = &cobra.Command{
	Use:   "reprice",
	Short: "Reprice active listings against the market",
	Long: `Query your active listings, aggregate them into inventory items and
reprice them against a market reference (lowest ask, sell faster or earn
more). The change is pushed through the batch update endpoint and the
consolidated outcome is journaled.`,
	RunE: runReprice,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	repriceStrategy   string
	repriceBeatBy     float64
	repricePercentage bool
	repriceSKUs       []string
	repriceSizes      []string
	repriceMinPayout  float64
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(repriceCmd)
	repriceCmd.Flags().StringVar(&repriceStrategy, "strategy", "lowest-ask", "Market reference: lowest-ask, sell-faster or earn-more")
	repriceCmd.Flags().Float64Var(&repriceBeatBy, "beat-by", 1, "How much to undercut the reference by")
	repriceCmd.Flags().BoolVar(&repricePercentage, "percentage", false, "Treat --beat-by as a fraction instead of an absolute amount")
	repriceCmd.Flags().StringSliceVar(&repriceSKUs, "sku", nil, "Only reprice listings with these style ids")
	repriceCmd.Flags().StringSliceVar(&repriceSizes, "size", nil, "Only reprice listings with these sizes")
	repriceCmd.Flags().Float64Var(&repriceMinPayout, "min-payout", 0, "Skip items whose payout would drop below this")
}

func runReprice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, teardown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer teardown()

	if err := rt.inventory.LoadFees(ctx); err != nil {
		return fmt.Errorf("load fees: %w", err)
	}

	query := rt.inventory.Items().FilterBy(inventory.Selection{
		StyleIDs: repriceSKUs,
		Sizes:    repriceSizes,
	})
	items, err := query.Get(ctx)
	if err != nil {
		return fmt.Errorf("query items: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("No items matched.")
		return nil
	}

	beatBy := inventory.FixedAmount(repriceBeatBy)
	condition := inventory.Condition(inventory.Always)
	if repriceMinPayout > 0 {
		condition = inventory.ConditionContextFunc(
			func(ctx context.Context, item *inventory.ListedItem) (bool, error) {
				market, err := rt.inventory.GetItemMarketData(ctx, item)
				if err != nil {
					return false, err
				}
				value := marketReference(market)
				if value == nil {
					return false, nil
				}
				return value.Payout >= repriceMinPayout, nil
			})
	}

	var results []inventory.UpdateResult
	switch repriceStrategy {
	case "lowest-ask":
		results, err = rt.inventory.BeatLowestAsk(ctx, items, beatBy, repricePercentage, condition)
	case "sell-faster":
		results, err = rt.inventory.BeatSellFaster(ctx, items, beatBy, repricePercentage, condition)
	case "earn-more":
		results, err = rt.inventory.BeatEarnMore(ctx, items, beatBy, repricePercentage, condition)
	default:
		return fmt.Errorf("unknown strategy %q", repriceStrategy)
	}

	var incomplete *inventory.IncompleteOperationError
	if errors.As(err, &incomplete) {
		fmt.Printf("Reprice incomplete; %d batches timed out\n", len(incomplete.TimedOutBatchIDs))
		results = incomplete.PartialResults
	} else if err != nil {
		return fmt.Errorf("reprice: %w", err)
	}

	if err := journal.RecordResults(ctx, rt.journal, results); err != nil {
		return fmt.Errorf("journal results: %w", err)
	}

	updated := 0
	for _, result := range results {
		updated += len(result.Updated)
	}
	fmt.Printf("Repriced %d listings across %d items\n", updated, len(results))
	return nil
}

// marketReference picks the market value matching the selected strategy.
func marketReference(market *inventory.ItemMarketData) *inventory.MarketValue {
	switch repriceStrategy {
	case "sell-faster":
		return market.SellFaster
	case "earn-more":
		return market.EarnMore
	default:
		return market.LowestAsk
	}
}
