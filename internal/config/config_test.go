package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"FORECAST_DATA_DIR", "FORECAST_LOOKBACK_DAYS", "FORECAST_SOURCE", "FORECAST_DB_PATH",
		"OPTIMIZER_MAX_ITERATIONS", "OPTIMIZER_TIMEOUT", "GO_PORT", "LOG_LEVEL", "DEV_MODE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, len(cfg.DataDir) > 0 && cfg.DataDir[0] == '/')
	assert.Equal(t, 180, cfg.LookbackDays)
	assert.Equal(t, 180*24*time.Hour, cfg.Lookback())
	assert.Equal(t, SourceFolder, cfg.Source)
	assert.Equal(t, 500, cfg.Optimizer.MaxIterations)
	assert.Equal(t, 5*time.Second, cfg.Optimizer.Timeout)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FORECAST_DATA_DIR", t.TempDir())
	t.Setenv("FORECAST_LOOKBACK_DAYS", "0")
	t.Setenv("FORECAST_SOURCE", "s3")
	t.Setenv("S3_BUCKET", "forecasts")
	t.Setenv("OPTIMIZER_TIMEOUT", "250ms")
	t.Setenv("FORECAST_SYNC_SCHEDULE", "")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LookbackDays)
	assert.Equal(t, time.Duration(0), cfg.Lookback())
	assert.Equal(t, SourceS3, cfg.Source)
	assert.Equal(t, "forecasts", cfg.S3.Bucket)
	assert.Equal(t, 250*time.Millisecond, cfg.Optimizer.Timeout)
	assert.Equal(t, "", cfg.SyncSchedule)
	assert.True(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LookbackDays: 180,
			Source:       SourceFolder,
			Port:         8001,
			Optimizer:    OptimizerConfig{MaxIterations: 500, Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative lookback", func(c *Config) { c.LookbackDays = -1 }},
		{"zero iterations", func(c *Config) { c.Optimizer.MaxIterations = 0 }},
		{"zero timeout", func(c *Config) { c.Optimizer.Timeout = 0 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"unknown source", func(c *Config) { c.Source = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Source = SourceS3 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
