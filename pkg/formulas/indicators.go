package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SimpleMovingAverage returns the SMA of values over period points.
// The first period-1 entries are NaN since the average is not yet defined there.
// A period larger than the input yields an all-NaN slice.
func SimpleMovingAverage(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period < 1 || len(values) < period {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sma := talib.Sma(values, period)
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sma[i]
	}
	return out
}
