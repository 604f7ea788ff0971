package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statyba/storefront/internal/app"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// rootOptions holds global flags for all commands
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Storefront operator tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (default: config.toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(newSitemapCommand(opts))
	cmd.AddCommand(newRatingCommand(opts))
	cmd.AddCommand(newCustomerCommand(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath == "" {
		return config.Load()
	}
	return config.LoadFile(o.ConfigPath)
}

// withApp builds the application graph, runs fn and tears the graph down again
func withApp(ctx context.Context, opts *rootOptions, fn func(context.Context, *app.App) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{Level: opts.LogLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close(context.Background())
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Warn("Shutdown finished with errors", zap.Error(err))
		}
	}()

	return fn(ctx, a)
}
