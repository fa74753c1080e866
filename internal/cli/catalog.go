package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shopfront.io/storefront/api"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Page       int
	PerPage    int
	CategoryID uint64
	Search     string
}

// NewProductsCommand creates the products listing command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			page, err := svc.ListProducts(cmd.Context(), api.ListProductsParams{
				Page:       opts.Page,
				PerPage:    opts.PerPage,
				CategoryID: opts.CategoryID,
				Search:     opts.Search,
			})
			if err != nil {
				return err
			}

			for _, p := range page.Products {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-40s $%.2f\n", p.ID, p.Title, p.Price)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d\n", max(opts.Page, 1), page.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 20, "products per page")
	cmd.Flags().Uint64Var(&opts.CategoryID, "category", 0, "filter by category id")
	cmd.Flags().StringVar(&opts.Search, "search", "", "search term")

	return cmd
}

// NewProductCommand creates the single-product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
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

			p, err := svc.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Title)
			fmt.Fprintf(cmd.OutOrStdout(), "price: $%.2f\n", p.Price)
			if p.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Description)
			}
			return nil
		},
	}
}

// NewCategoriesCommand creates the categories listing command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			categories, err := svc.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6d %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}
