// Package formulas holds the small statistical helpers shared by the estimator and the charts.
package formulas

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor applied to per-period statistics.
const TradingDaysPerYear = 252

// ErrZeroBase is returned by PercentChanges when a value used as a base is zero.
var ErrZeroBase = errors.New("percentage change from a zero value")

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (N-1 denominator).
// Fewer than two observations carry no dispersion information and yield 0.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PercentChanges converts a level series to simple period-over-period changes.
// Changes[i] = (Values[i+1] - Values[i]) / Values[i]
func PercentChanges(values []float64) ([]float64, error) {
	if len(values) < 2 {
		return []float64{}, nil
	}

	changes := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return nil, fmt.Errorf("%w at index %d", ErrZeroBase, i-1)
		}
		changes[i-1] = (values[i] - values[i-1]) / values[i-1]
	}

	return changes, nil
}

// AnnualizeReturn scales a mean per-period return to a yearly figure.
func AnnualizeReturn(periodMean float64) float64 {
	return periodMean * TradingDaysPerYear
}

// AnnualizeVolatility scales a per-period standard deviation to a yearly figure.
func AnnualizeVolatility(periodStdDev float64) float64 {
	return periodStdDev * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio is expected return per unit of volatility with a zero risk-free rate.
// ok is false when volatility is zero or either input is not finite.
func SharpeRatio(expectedReturn, volatility float64) (sharpe float64, ok bool) {
	if volatility == 0 || math.IsNaN(volatility) || math.IsInf(volatility, 0) ||
		math.IsNaN(expectedReturn) || math.IsInf(expectedReturn, 0) {
		return 0, false
	}
	return expectedReturn / volatility, true
}
