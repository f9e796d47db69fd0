package di

import (
	"fmt"

	"github.com/aristath/forecastfolio/internal/config"
	"github.com/aristath/forecastfolio/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the forecast store and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// forecasts.db - imported forecast series (ephemeral, safe to rebuild from source)
	forecastsDB, err := database.New(database.Config{
		Path:    cfg.DBPath,
		Profile: database.ProfileCache,
		Name:    "forecasts",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize forecasts database: %w", err)
	}

	if err := forecastsDB.Migrate(); err != nil {
		forecastsDB.Close()
		return nil, fmt.Errorf("failed to migrate forecasts database: %w", err)
	}
	container.ForecastsDB = forecastsDB

	log.Info().Str("path", forecastsDB.Path()).Msg("Forecast database initialized")

	return container, nil
}
