// Package commands implements the forecastfolio CLI.
package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/forecastfolio/internal/config"
	"github.com/aristath/forecastfolio/internal/di"
	"github.com/aristath/forecastfolio/pkg/logger"
)

// globalFlags override the environment configuration
type globalFlags struct {
	dataDir  string
	dbPath   string
	source   string
	logLevel string
}

// Execute builds the command tree and runs it. Called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "forecastfolio",
		Short: "Portfolio optimization over price forecasts",
		Long: `forecastfolio estimates annualized return and volatility from forecast
series (forecast_<TICKER>.csv) and computes the maximum-Sharpe allocation.

Examples:
  forecastfolio list --data ./data
  forecastfolio optimize --data ./data --tickers AAPL,MSFT --window 180d
  forecastfolio import --data ./data --db ./data/forecasts.db`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data", "", "forecast data folder (default $FORECAST_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "forecast store path (default <data>/forecasts.db)")
	rootCmd.PersistentFlags().StringVar(&flags.source, "source", "", "forecast source: folder, store or s3 (default $FORECAST_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newOptimizeCmd(flags))
	rootCmd.AddCommand(newImportCmd(flags))

	return rootCmd
}

// loadConfig reads the environment and applies command line overrides
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if f.dataDir != "" {
		dataDir, err := filepath.Abs(f.dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
		}
		cfg.DataDir = dataDir
		cfg.DBPath = filepath.Join(dataDir, "forecasts.db")
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.source != "" {
		cfg.Source = f.source
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// wire loads configuration and builds the dependency container. Logs go to stderr.
func (f *globalFlags) wire(cmd *cobra.Command) (*di.Container, *config.Config, zerolog.Logger, error) {
	log := logger.New(logger.Config{
		Level:  f.logLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})

	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, log, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, _, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return nil, nil, log, err
	}
	return container, cfg, log, nil
}
