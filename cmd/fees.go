package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Discover your account's selling fees",
	Long: `Load the account's transaction and payment fees from an existing
listing's payout breakdown, or by probing with a short-lived mock listing
when no active listing is available. Prints the fees and a sample payout.`,
	RunE: runFees,
}

//nolint:gochecknoglobals // Cobra boilerplate
var feesSamplePrice float64

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(feesCmd)
	feesCmd.Flags().Float64VarP(&feesSamplePrice, "price", "p", 100, "Sample price for the payout preview")
}

func runFees(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, teardown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer teardown()

	if err := rt.inventory.LoadFees(ctx); err != nil {
		return fmt.Errorf("load fees: %w", err)
	}

	payout := rt.inventory.CalculatePayout(feesSamplePrice)
	fmt.Printf("Currency:        %s\n", rt.inventory.Currency())
	fmt.Printf("Sample price:    %.2f\n", feesSamplePrice)
	fmt.Printf("Sample payout:   %.2f\n", payout)
	return nil
}
