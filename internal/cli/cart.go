package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the shopping cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, rootOpts)
		},
	}

	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))

	return cmd
}

func showCart(cmd *cobra.Command, rootOpts *RootOptions) error {
	svc, err := newService(cmd.Context(), rootOpts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	cart := svc.Cart()
	if cart.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout(), "cart is empty")
		return nil
	}

	for _, line := range cart.Lines {
		fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-40s x%-4d $%.2f\n",
			line.Product.ID, line.Product.Title, line.Quantity,
			line.Product.Price*float64(line.Quantity))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "subtotal: $%.2f\n", cart.Subtotal())
	return nil
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	var quantity uint64

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			// The cart stores the full product reference, so resolve it
			// from the catalog first.
			product, err := svc.GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up product %d: %w", id, err)
			}

			if err = svc.AddToCart(cmd.Context(), product, quantity); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s x%d\n", product.Title, quantity)
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			quantity, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			return svc.UpdateCartItem(cmd.Context(), id, quantity)
		},
	}
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			return svc.RemoveFromCart(cmd.Context(), id)
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			return svc.ClearCart(cmd.Context())
		},
	}
}
