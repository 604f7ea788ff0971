package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statyba/storefront/internal/app"
)

func newCustomerCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Customer account administration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a registered customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, a *app.App) error {
				customer, err := a.Services.Auth.PromoteToAdmin(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin (%s)\n", customer.Email, customer.ID)
				return nil
			})
		},
	})

	return cmd
}
