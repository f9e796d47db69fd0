/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and the CLI.
 */
package di

import (
	"github.com/aristath/forecastfolio/internal/database"
	"github.com/aristath/forecastfolio/internal/modules/charts"
	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	"github.com/aristath/forecastfolio/internal/scheduler"
	"github.com/aristath/forecastfolio/pkg/metrics"
)

// Container holds all dependencies for the application.
type Container struct {
	// Database
	ForecastsDB *database.DB // forecasts.db - imported forecast series

	// Forecast access
	Store    *forecasts.Store  // SQLite-backed forecast store
	Upstream forecasts.Source  // Where forecasts originate (folder or S3)
	Source   forecasts.Source  // What the dashboard reads (Upstream or Store)
	Loader   *forecasts.Loader // Concurrent, deduplicating loader over Source
	Importer *forecasts.Importer

	// Core
	Estimator           *optimization.Estimator
	Optimizer           *optimization.MVOptimizer
	OptimizationService *optimization.Service
	ChartsService       *charts.Service

	// Ambient
	Recorder  *metrics.Recorder
	Scheduler *scheduler.Scheduler
}

// JobInstances holds job references for manual triggering via API
type JobInstances struct {
	ForecastSync   scheduler.Job
	WALCheckpoints scheduler.Job
}

// Close releases resources held by the container
func (c *Container) Close() error {
	if c == nil || c.ForecastsDB == nil {
		return nil
	}
	return c.ForecastsDB.Close()
}
