package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockx-tools/stockroom/pkg/api"
)

//nolint:gochecknoglobals // Cobra boilerplate
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your sales orders",
	Long: `Stream your orders from the marketplace. Shows active orders by
default; use --history for completed and canceled ones.`,
	RunE: runOrders,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	ordersHistory bool
	ordersLimit   int
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.Flags().BoolVar(&ordersHistory, "history", false, "Show historical orders instead of active ones")
	ordersCmd.Flags().IntVarP(&ordersLimit, "limit", "l", 100, "Maximum number of orders to fetch (0 = all)")
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, teardown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer teardown()

	query := &api.OrdersQuery{Limit: ordersLimit}

	stream := rt.api.Orders.GetActiveOrders(query)
	if ordersHistory {
		stream = rt.api.Orders.GetOrdersHistory(query)
	}

	count := 0
	for stream.Next(ctx) {
		order := stream.Item()
		size := ""
		if order.Variant != nil {
			size = order.Variant.Value
		}
		fmt.Printf("%-14s %-12s %8d %s  %s (%s)\n",
			order.Number,
			order.Status,
			int(order.Amount),
			order.CurrencyCode,
			order.Product.Name,
			size,
		)
		count++
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("stream orders: %w", err)
	}

	fmt.Printf("\n%d orders\n", count)
	return nil
}
