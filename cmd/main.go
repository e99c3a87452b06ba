package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"warehouse-manager/internal/config"
	"warehouse-manager/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "warehouse-manager",
	Short: "Warehouse management backend",
	Long: `Warehouse management backend: user accounts, cookie-based JWT sessions,
password reset by mail and per-user warehouse records.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".env", "dotenv file to read before the environment")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads and validates configuration, then initialises the logger.
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
