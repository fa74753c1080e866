// Package cli implements the storefront command line, the thin UI
// collaborator over the client facade.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopfront.io/storefront"
	"shopfront.io/storefront/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront - a terminal client for the shop API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewSignupCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))

	return cmd
}

// newService builds the client from configuration and restores the
// session. Callers own Close.
func newService(ctx context.Context, opts *RootOptions) (storefront.Service, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger(cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, err
	}

	svc, err := storefront.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err = svc.Restore(ctx); err != nil {
		// A dead API still allows browsing the local cart.
		logger.Warn("Failed to restore session", zap.Error(err))
	}

	return svc, nil
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	return cfg.Build()
}
