package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statyba/storefront/internal/app"
)

func newRatingCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rating",
		Short: "Product rating maintenance",
	}

	var batch int
	rebuild := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute every product rating from approved reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch <= 0 {
				return fmt.Errorf("invalid --batch %d: must be positive", batch)
			}
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, a *app.App) error {
				n, err := a.Services.Reviews.RebuildAllRatings(ctx, batch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rebuilt ratings for %d products\n", n)
				return nil
			})
		},
	}
	rebuild.Flags().IntVar(&batch, "batch", 200, "products per batch")

	cmd.AddCommand(rebuild)
	return cmd
}
