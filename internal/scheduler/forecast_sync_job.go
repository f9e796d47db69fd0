package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
)

// Importer copies forecasts into the local store. *forecasts.Importer satisfies it.
type Importer interface {
	Import(ctx context.Context) (*forecasts.ImportResult, error)
}

// ForecastSyncJob imports the upstream forecast source (folder or bucket) into the SQLite store
type ForecastSyncJob struct {
	importer Importer
	timeout  time.Duration
	log      zerolog.Logger
}

// ForecastSyncJobConfig holds configuration for the forecast sync job
type ForecastSyncJobConfig struct {
	Log      zerolog.Logger
	Importer Importer
	Timeout  time.Duration // Bound on one import pass; defaults to 2 minutes
}

// NewForecastSyncJob creates a new forecast sync job
func NewForecastSyncJob(cfg ForecastSyncJobConfig) *ForecastSyncJob {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &ForecastSyncJob{
		importer: cfg.Importer,
		timeout:  cfg.Timeout,
		log:      cfg.Log.With().Str("job", "forecast_sync").Logger(),
	}
}

// Name returns the job name
func (j *ForecastSyncJob) Name() string {
	return "forecast_sync"
}

// Run executes one import pass
func (j *ForecastSyncJob) Run() error {
	if j.importer == nil {
		return fmt.Errorf("forecast importer not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.importer.Import(ctx)
	if err != nil {
		return fmt.Errorf("forecast sync failed: %w", err)
	}

	j.log.Info().
		Int("imported", len(result.Imported)).
		Int("failed", len(result.Failed)).
		Dur("duration", time.Since(start)).
		Msg("Forecast sync completed")

	return nil
}
