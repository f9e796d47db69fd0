// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Forecast source kinds.
const (
	SourceFolder = "folder"
	SourceStore  = "store"
	SourceS3     = "s3"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Folder with forecast_<TICKER>.csv files (always absolute)
	LookbackDays int    // Default estimation window; 0 = full series
	Source       string // folder, store or s3
	DBPath       string // SQLite forecast store
	SyncSchedule string // Cron schedule for importing into the store; empty disables
	LogLevel     string
	Port         int
	DevMode      bool
	Optimizer    OptimizerConfig
	S3           S3Config
}

// OptimizerConfig holds solver limits
type OptimizerConfig struct {
	MaxIterations int
	Timeout       time.Duration
}

// S3Config holds the bucket forecasts are read from when Source is s3
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("FORECAST_DATA_DIR", "data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:      dataDir,
		LookbackDays: getEnvAsInt("FORECAST_LOOKBACK_DAYS", 180),
		Source:       getEnv("FORECAST_SOURCE", SourceFolder),
		DBPath:       getEnv("FORECAST_DB_PATH", filepath.Join(dataDir, "forecasts.db")),
		SyncSchedule: getEnvAllowEmpty("FORECAST_SYNC_SCHEDULE", "@every 5m"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		Optimizer: OptimizerConfig{
			MaxIterations: getEnvAsInt("OPTIMIZER_MAX_ITERATIONS", 500),
			Timeout:       getEnvAsDuration("OPTIMIZER_TIMEOUT", 5*time.Second),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Prefix:          getEnv("S3_PREFIX", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.LookbackDays < 0 {
		return fmt.Errorf("%w: FORECAST_LOOKBACK_DAYS must be >= 0, got %d", ErrInvalid, c.LookbackDays)
	}
	if c.Optimizer.MaxIterations <= 0 {
		return fmt.Errorf("%w: OPTIMIZER_MAX_ITERATIONS must be > 0, got %d", ErrInvalid, c.Optimizer.MaxIterations)
	}
	if c.Optimizer.Timeout <= 0 {
		return fmt.Errorf("%w: OPTIMIZER_TIMEOUT must be > 0, got %s", ErrInvalid, c.Optimizer.Timeout)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: GO_PORT out of range: %d", ErrInvalid, c.Port)
	}

	switch c.Source {
	case SourceFolder, SourceStore:
	case SourceS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("%w: S3_BUCKET is required when FORECAST_SOURCE=s3", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown FORECAST_SOURCE %q (folder, store or s3)", ErrInvalid, c.Source)
	}

	return nil
}

// Lookback returns the default estimation window. Zero means the full series.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one explicitly set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
