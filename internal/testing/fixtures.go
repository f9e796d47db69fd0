package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// FixtureStart is the first ds of generated forecast fixtures.
var FixtureStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// WriteForecastCSV writes forecast_<ticker>.csv into dir with one daily row per value,
// starting at FixtureStart, and returns the file path.
func WriteForecastCSV(t *testing.T, dir, ticker string, values []float64) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("ds,yhat,yhat_lower,yhat_upper\n")
	for i, v := range values {
		ds := FixtureStart.AddDate(0, 0, i).Format("2006-01-02")
		fmt.Fprintf(&b, "%s,%g,%g,%g\n", ds, v, v*0.95, v*1.05)
	}

	return WriteRawCSV(t, dir, "forecast_"+ticker+".csv", b.String())
}

// WriteRawCSV writes content to dir/name and returns the path.
func WriteRawCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}

// GrowthPrices returns n prices starting at start that alternate between two daily
// growth rates, giving a series with known non-zero mean and dispersion of changes.
func GrowthPrices(start float64, n int, up, down float64) []float64 {
	prices := make([]float64, n)
	prices[0] = start
	for i := 1; i < n; i++ {
		rate := up
		if i%2 == 0 {
			rate = down
		}
		prices[i] = prices[i-1] * (1 + rate)
	}
	return prices
}

// ConstantPrices returns n copies of value.
func ConstantPrices(value float64, n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = value
	}
	return prices
}
