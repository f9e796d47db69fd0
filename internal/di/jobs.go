package di

import (
	"fmt"

	"github.com/aristath/forecastfolio/internal/config"
	"github.com/aristath/forecastfolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// walCheckSchedule runs the WAL check every 15 minutes
const walCheckSchedule = "0 */15 * * * *"

// RegisterJobs creates the scheduler and registers background jobs
// Returns JobInstances for manual triggering via API
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)

	instances := &JobInstances{
		ForecastSync: scheduler.NewForecastSyncJob(scheduler.ForecastSyncJobConfig{
			Log:      log,
			Importer: container.Importer,
		}),
		WALCheckpoints: scheduler.NewCheckWALCheckpointsJob(log, container.ForecastsDB),
	}

	// The store only needs refreshing when the dashboard reads from it
	if cfg.Source == config.SourceStore && cfg.SyncSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.SyncSchedule, instances.ForecastSync); err != nil {
			return nil, fmt.Errorf("failed to register forecast sync job: %w", err)
		}
	}

	if err := container.Scheduler.AddJob(walCheckSchedule, instances.WALCheckpoints); err != nil {
		return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
	}

	log.Info().Int("jobs", container.Scheduler.Entries()).Msg("Jobs registered")

	return instances, nil
}
