package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	testingutil "github.com/aristath/forecastfolio/internal/testing"
)

type failingImporter struct{}

func (failingImporter) Import(ctx context.Context) (*forecasts.ImportResult, error) {
	return nil, errors.New("bucket unreachable")
}

func TestForecastSyncJob_Run(t *testing.T) {
	dir := t.TempDir()
	testingutil.WriteForecastCSV(t, dir, "AAPL", []float64{1, 2, 3})

	db, cleanup := testingutil.NewTestDB(t, "forecasts")
	defer cleanup()

	store := forecasts.NewStore(db.Conn(), zerolog.Nop())
	job := NewForecastSyncJob(ForecastSyncJobConfig{
		Log:      zerolog.Nop(),
		Importer: forecasts.NewImporter(forecasts.NewFolderSource(dir, zerolog.Nop()), store, zerolog.Nop()),
	})

	assert.Equal(t, "forecast_sync", job.Name())
	require.NoError(t, job.Run())

	tickers, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)
}

func TestForecastSyncJob_Errors(t *testing.T) {
	job := NewForecastSyncJob(ForecastSyncJobConfig{Log: zerolog.Nop(), Importer: failingImporter{}})
	assert.ErrorContains(t, job.Run(), "bucket unreachable")

	job = NewForecastSyncJob(ForecastSyncJobConfig{Log: zerolog.Nop()})
	assert.Error(t, job.Run())
}

func TestCheckWALCheckpointsJob_Run(t *testing.T) {
	db, cleanup := testingutil.NewTestDB(t, "forecasts")
	defer cleanup()

	job := NewCheckWALCheckpointsJob(zerolog.Nop(), db, nil)
	assert.Equal(t, "check_wal_checkpoints", job.Name())
	assert.NoError(t, job.Run())
}
