package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/forecastfolio/internal/modules/optimization"
	testingutil "github.com/aristath/forecastfolio/internal/testing"
)

// setupData writes two forecasts and isolates the environment configuration.
func setupData(t *testing.T) string {
	t.Helper()

	t.Setenv("FORECAST_SOURCE", "folder")
	t.Setenv("FORECAST_LOOKBACK_DAYS", "180")
	t.Setenv("FORECAST_DB_PATH", "")
	t.Setenv("S3_BUCKET", "")

	dir := t.TempDir()
	testingutil.WriteForecastCSV(t, dir, "AAA", testingutil.GrowthPrices(100, 60, 0.02, -0.01))
	testingutil.WriteForecastCSV(t, dir, "BBB", testingutil.GrowthPrices(50, 60, 0.01, -0.004))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)

	err := root.Execute()
	return out.String(), err
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "180d", want: 180 * 24 * time.Hour},
		{raw: "30", want: 30 * 24 * time.Hour},
		{raw: "0", want: 0},
		{raw: "720h", want: 720 * time.Hour},
		{raw: " 7d ", want: 7 * 24 * time.Hour},
		{raw: "-3d", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "soon", wantErr: true},
		{raw: "xd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseWindow(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, optimization.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.34%", formatPercent(0.1234))
	assert.Equal(t, "0.00%", formatPercent(0))
	assert.Equal(t, "-5.50%", formatPercent(-0.055))
}

func TestSortedWeights(t *testing.T) {
	rows := sortedWeights(optimization.PortfolioWeights{"B": 0.25, "A": 0.25, "C": 0.5})
	require.Len(t, rows, 3)
	assert.Equal(t, "C", rows[0].Ticker)
	assert.Equal(t, "A", rows[1].Ticker)
	assert.Equal(t, "B", rows[2].Ticker)
}

func TestOptimize_Raw(t *testing.T) {
	dir := setupData(t)

	out, err := run(t, "optimize", "--data", dir, "--tickers", "AAA,BBB", "--window", "0", "--format", "raw")
	require.NoError(t, err)

	assert.Contains(t, out, "# Portfolio optimization")
	assert.Contains(t, out, "lookback full series")
	assert.Contains(t, out, "## Maximum-Sharpe portfolio")
	assert.Contains(t, out, "| AAA |")
	assert.Contains(t, out, "| BBB |")
	assert.NotContains(t, out, "## Excluded assets")
}

func TestOptimize_Markdown(t *testing.T) {
	dir := setupData(t)

	out, err := run(t, "optimize", "--data", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Portfolio optimization")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "%")
}

func TestOptimize_JSON(t *testing.T) {
	dir := setupData(t)

	out, err := run(t, "optimize", "--data", dir, "--window", "30d", "--format", "json")
	require.NoError(t, err)

	var report struct {
		WindowDays int `json:"window_days"`
		Optimized  struct {
			Weights map[string]float64 `json:"weights"`
		} `json:"optimized"`
		Scatter []map[string]interface{} `json:"scatter"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, 30, report.WindowDays)
	assert.Len(t, report.Scatter, 2)
	assert.InDelta(t, 1.0, report.Optimized.Weights["AAA"]+report.Optimized.Weights["BBB"], 1e-9)
}

func TestOptimize_ExcludedAssetsAreReported(t *testing.T) {
	dir := setupData(t)
	testingutil.WriteForecastCSV(t, dir, "ONE", []float64{10})

	out, err := run(t, "optimize", "--data", dir, "--window", "0", "--format", "raw")
	require.NoError(t, err)

	assert.Contains(t, out, "## Excluded assets")
	assert.Contains(t, out, "**ONE**")
}

func TestOptimize_Errors(t *testing.T) {
	dir := setupData(t)

	_, err := run(t, "optimize", "--data", dir, "--format", "yaml")
	assert.ErrorIs(t, err, optimization.ErrConfiguration)

	_, err = run(t, "optimize", "--data", dir, "--window", "later")
	assert.ErrorIs(t, err, optimization.ErrConfiguration)

	_, err = run(t, "optimize", "--data", dir, "--tickers", "AAA,AAA")
	assert.ErrorIs(t, err, optimization.ErrConfiguration)

	_, err = run(t, "optimize", "--data", filepath.Join(dir, "missing"), "--db", filepath.Join(dir, "f.db"))
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := setupData(t)

	out, err := run(t, "list", "--data", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
	assert.Contains(t, out, "60")
	assert.Contains(t, out, "2025-01-01")
}

func TestList_Empty(t *testing.T) {
	setupData(t)
	empty := t.TempDir()

	out, err := run(t, "list", "--data", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "no forecasts found")
}

func TestImport(t *testing.T) {
	dir := setupData(t)
	db := filepath.Join(t.TempDir(), "store.db")

	out, err := run(t, "import", "--data", dir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 forecasts")

	// The store now serves the same forecasts
	out, err = run(t, "list", "--data", dir, "--db", db, "--source", "store")
	require.NoError(t, err)
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
}
