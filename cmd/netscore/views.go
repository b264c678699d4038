package main

import (
	"context"

	"github.com/spf13/cobra"

	"network-insights-go/internal/filter"
)

// viewCmd builds a subcommand that prints one service view. withMin adds
// --min-count.
func viewCmd(use, short string, withMin bool,
	run func(ctx context.Context, c filter.Criteria, min *int) (any, error)) *cobra.Command {
	var minCount int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := criteria()
			if err != nil {
				return err
			}
			var min *int
			if withMin && cmd.Flags().Changed("min-count") {
				min = &minCount
			}
			res, err := run(cmd.Context(), c, min)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	if withMin {
		cmd.Flags().IntVar(&minCount, "min-count", 0, "minimum services for a group to be scored (default from config)")
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(
		viewCmd("summary", "Network KPIs and available filter values", false,
			func(ctx context.Context, c filter.Criteria, _ *int) (any, error) {
				return service().Summary(ctx, c)
			}),
		viewCmd("cities", "Score cities by capillarity index", true,
			func(ctx context.Context, c filter.Criteria, min *int) (any, error) {
				return service().Capillarity(ctx, c, min)
			}),
		viewCmd("providers", "Score providers by performance", true,
			func(ctx context.Context, c filter.Criteria, min *int) (any, error) {
				return service().Providers(ctx, c, min)
			}),
		viewCmd("nps", "Monthly and per-provider NPS", false,
			func(ctx context.Context, c filter.Criteria, _ *int) (any, error) {
				return service().NPS(ctx, c)
			}),
		viewCmd("finance", "Spend totals and CMS views", true,
			func(ctx context.Context, c filter.Criteria, min *int) (any, error) {
				return service().Finance(ctx, c, min)
			}),
		viewCmd("quality", "NPS rankings and arrival times", true,
			func(ctx context.Context, c filter.Criteria, min *int) (any, error) {
				return service().Quality(ctx, c, min)
			}),
	)
}
