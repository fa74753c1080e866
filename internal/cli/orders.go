package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shopfront.io/storefront/models"
)

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var addr models.ShippingAddress

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err = svc.Checkout(cmd.Context(), addr); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "order placed")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr.Name, "name", "", "recipient name")
	cmd.Flags().StringVar(&addr.Address, "address", "", "street address")
	cmd.Flags().StringVar(&addr.City, "city", "", "city")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("city")

	return cmd
}

// NewOrdersCommand creates the order history command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			orders, err := svc.ListOrders(cmd.Context())
			if err != nil {
				return err
			}

			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-12s %-20s $%.2f\n",
					o.ID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"), o.TotalPrice)
			}
			return nil
		},
	}
}

// NewOrderCommand creates the single-order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			order, err := svc.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order %d (%s)\n", order.ID, order.Status)
			for _, item := range order.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-40s x%-4d $%.2f\n",
					item.Product.Title, item.Quantity,
					item.Product.Price*float64(item.Quantity))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: $%.2f\n", order.TotalPrice)
			return nil
		},
	}
}
