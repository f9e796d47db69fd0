package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/forecastfolio/internal/config"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	testingutil "github.com/aristath/forecastfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:      dir,
		LookbackDays: 180,
		Source:       source,
		DBPath:       filepath.Join(dir, "forecasts.db"),
		SyncSchedule: "@every 5m",
		Port:         8001,
		Optimizer: config.OptimizerConfig{
			MaxIterations: 500,
			Timeout:       5 * time.Second,
		},
	}
}

func TestInitializeDatabases(t *testing.T) {
	cfg := testConfig(t, config.SourceFolder)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.ForecastsDB)
	assert.FileExists(t, cfg.DBPath)
}

func TestWire_FolderSource(t *testing.T) {
	cfg := testConfig(t, config.SourceFolder)
	testingutil.WriteForecastCSV(t, cfg.DataDir, "AAA", testingutil.GrowthPrices(100, 60, 0.02, -0.01))
	testingutil.WriteForecastCSV(t, cfg.DataDir, "BBB", testingutil.GrowthPrices(100, 60, 0.01, -0.005))

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, "folder", container.Source.Kind())
	assert.Equal(t, "folder", container.Upstream.Kind())
	require.NotNil(t, jobs.ForecastSync)
	require.NotNil(t, jobs.WALCheckpoints)

	// Only the WAL check is scheduled when reading straight from the folder
	assert.Equal(t, 1, container.Scheduler.Entries())

	report, err := container.OptimizationService.Run(context.Background(), optimization.Request{})
	require.NoError(t, err)
	assert.Len(t, report.Assets, 2)
	assert.InDelta(t, 1.0, report.Optimized.Weights.Sum(), 1e-9)
}

func TestWire_StoreSource(t *testing.T) {
	cfg := testConfig(t, config.SourceStore)
	testingutil.WriteForecastCSV(t, cfg.DataDir, "AAA", testingutil.GrowthPrices(100, 30, 0.02, -0.01))

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, "store", container.Source.Kind())
	assert.Equal(t, 2, container.Scheduler.Entries())

	require.NoError(t, container.Scheduler.RunNow(jobs.ForecastSync))

	tickers, err := container.Source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, tickers)
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t, config.SourceStore)
	cfg.SyncSchedule = "every now and then"

	_, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to register jobs")
}

func TestInitializeServices_RequiresDatabases(t *testing.T) {
	err := InitializeServices(context.Background(), &Container{}, testConfig(t, config.SourceFolder), zerolog.Nop())
	assert.Error(t, err)
}
