package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketpulse/internal/adapters/config"
	pgclient "marketpulse/internal/adapters/postgres"
	"marketpulse/internal/bootstrap"
	pgrepo "marketpulse/internal/repository/postgres"
	"marketpulse/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "marketpulse",
		Short: "MarketPulse - Telegram market data and alerts bot",
		Long: `MarketPulse answers stock questions on Telegram for US and Indian (NSE/BSE) markets.

It long-polls the Bot API, resolves tickers across markets, renders quotes,
fundamentals and AI commentary, and sweeps watchlists for price and news alerts.

Configuration is read from the environment (and a .env file when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, background workers and the metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Short:   "Apply pending Postgres migrations and exit",
		Example: `  POSTGRES_HOST=localhost POSTGRES_USER=mp POSTGRES_PASSWORD=mp POSTGRES_DB=mp marketpulse migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pg, err := pgclient.NewClient(cfg.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			if err := pgrepo.Migrate(ctx, pg.DB()); err != nil {
				return err
			}
			logger.Info("✓ Migrations applied")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the configured version",
		Run: func(cmd *cobra.Command, args []string) {
			version := os.Getenv("APP_VERSION")
			if version == "" {
				version = "dev"
			}
			fmt.Fprintln(cmd.OutOrStdout(), "marketpulse", version)
		},
	}
}

// runServe builds the container, starts everything and blocks until SIGINT/SIGTERM
func runServe() error {
	c := bootstrap.NewContainer()
	c.MustInit()

	if err := c.Start(); err != nil {
		c.Log.Errorw("Startup failed", "error", err)
		c.Shutdown()
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		c.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-c.Context.Done():
		c.Log.Warn("A core component stopped, shutting down")
	}

	c.Shutdown()
	return nil
}
