package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "StockX inventory orchestration tool",
	Long: `Stockroom keeps a logical view of your StockX selling inventory and
reconciles it against the marketplace in batches.

It wraps the StockX selling API with rate limiting, retries, catalog
caching and OAuth token refresh, and layers batched create/update/delete
reconciliation plus repricing strategies on top.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
