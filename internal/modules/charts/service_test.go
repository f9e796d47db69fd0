package charts

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	testingutil "github.com/aristath/forecastfolio/internal/testing"
)

func newTestService(t *testing.T, values map[string][]float64) *Service {
	t.Helper()
	dir := t.TempDir()
	for ticker, v := range values {
		testingutil.WriteForecastCSV(t, dir, ticker, v)
	}
	log := zerolog.Nop()
	return NewService(forecasts.NewLoader(forecasts.NewFolderSource(dir, log), nil, log), log)
}

func TestGetForecastChart(t *testing.T) {
	svc := newTestService(t, map[string][]float64{"AAA": {1, 2, 3, 4, 5, 6}})

	points, err := svc.GetForecastChart(context.Background(), "AAA", 3, "")
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.Equal(t, "2025-01-01", points[0].Time)
	assert.Equal(t, 1.0, points[0].Value)
	assert.Nil(t, points[0].SMA)
	assert.Nil(t, points[1].SMA)
	require.NotNil(t, points[2].SMA)
	assert.InDelta(t, 2.0, *points[2].SMA, 1e-9)
	assert.InDelta(t, 5.0, *points[5].SMA, 1e-9)
}

func TestGetForecastChart_Range(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	svc := newTestService(t, map[string][]float64{"AAA": values})

	points, err := svc.GetForecastChart(context.Background(), "AAA", 20, "1M")
	require.NoError(t, err)
	require.Len(t, points, 30)

	// SMA is defined from the first visible point because history precedes the range.
	require.NotNil(t, points[0].SMA)
	assert.InDelta(t, 61.5, *points[0].SMA, 1e-9)
}

func TestGetForecastChart_Errors(t *testing.T) {
	svc := newTestService(t, map[string][]float64{"AAA": {1, 2}})
	ctx := context.Background()

	_, err := svc.GetForecastChart(ctx, "", 20, "")
	assert.Error(t, err)

	_, err = svc.GetForecastChart(ctx, "AAA", 0, "")
	assert.Error(t, err)

	_, err = svc.GetForecastChart(ctx, "AAA", 20, "2W")
	assert.Error(t, err)

	_, err = svc.GetForecastChart(ctx, "MISSING", 20, "")
	assert.ErrorIs(t, err, forecasts.ErrNotFound)
}

func TestRiskReturnScatter(t *testing.T) {
	points := RiskReturnScatter([]optimization.AssetMetrics{
		{Ticker: "ZZZ", ExpectedReturn: 0.1, Volatility: 0.2},
		{Ticker: "AAA", ExpectedReturn: 0.05, Volatility: 0.1},
	})

	require.Len(t, points, 2)
	assert.Equal(t, ScatterPoint{Ticker: "AAA", Volatility: 0.1, ExpectedReturn: 0.05}, points[0])
	assert.Equal(t, "ZZZ", points[1].Ticker)
}

func TestParseDateRange(t *testing.T) {
	for _, r := range []string{"", "all", "1M", "3M", "6M", "1Y"} {
		_, err := parseDateRange(r)
		assert.NoError(t, err, r)
	}
	_, err := parseDateRange("5Y")
	assert.Error(t, err)
}
