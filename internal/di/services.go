package di

import (
	"context"
	"fmt"

	"github.com/aristath/forecastfolio/internal/config"
	"github.com/aristath/forecastfolio/internal/modules/charts"
	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	"github.com/aristath/forecastfolio/pkg/metrics"
	"github.com/rs/zerolog"
)

// InitializeServices creates the forecast sources and the optimization services
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.ForecastsDB == nil {
		return fmt.Errorf("container databases must be initialized first")
	}

	container.Recorder = metrics.New()

	// Forecast sources
	container.Store = forecasts.NewStore(container.ForecastsDB.Conn(), log)

	upstream, err := newUpstreamSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	container.Upstream = upstream
	container.Importer = forecasts.NewImporter(upstream, container.Store, log)

	switch cfg.Source {
	case config.SourceStore:
		container.Source = container.Store
	default:
		container.Source = upstream
	}
	container.Loader = forecasts.NewLoader(container.Source, container.Recorder, log)

	// Core
	container.Estimator = optimization.NewEstimator(log)
	container.Optimizer = optimization.NewMVOptimizer(log)
	container.Optimizer.SetMaxIterations(cfg.Optimizer.MaxIterations)
	container.OptimizationService = optimization.NewService(
		container.Loader,
		container.Estimator,
		container.Optimizer,
		container.Recorder,
		optimization.ServiceConfig{
			DefaultWindow: cfg.Lookback(),
			Timeout:       cfg.Optimizer.Timeout,
		},
		log,
	)

	container.ChartsService = charts.NewService(container.Loader, log)

	log.Info().
		Str("source", container.Source.Kind()).
		Str("upstream", upstream.Kind()).
		Msg("Services initialized")

	return nil
}

// newUpstreamSource returns the S3 bucket when one is configured, otherwise the data folder.
func newUpstreamSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (forecasts.Source, error) {
	if cfg.S3.Bucket == "" {
		return forecasts.NewFolderSource(cfg.DataDir, log), nil
	}

	client, err := forecasts.NewS3Client(ctx, forecasts.S3Config{
		Bucket:          cfg.S3.Bucket,
		Prefix:          cfg.S3.Prefix,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return forecasts.NewS3Source(client, cfg.S3.Bucket, cfg.S3.Prefix, log), nil
}
