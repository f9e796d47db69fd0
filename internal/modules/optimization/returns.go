package optimization

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/pkg/formulas"
	"github.com/rs/zerolog"
)

// Estimator derives annualized expected return and volatility from a forecast series.
// It holds no state between calls.
type Estimator struct {
	log zerolog.Logger
}

// NewEstimator creates a new return/risk estimator.
func NewEstimator(log zerolog.Logger) *Estimator {
	return &Estimator{
		log: log.With().Str("component", "estimator").Logger(),
	}
}

// Estimate computes AssetMetrics for series.
//
// When window is non-nil only points newer than *window before the series'
// last timestamp are used. The percentage changes of the remaining values are
// averaged and annualized:
//   - expected_return = mean(changes) * 252
//   - volatility      = stddev(changes, N-1) * sqrt(252)
//
// At least two changes are required: the sample deviation of a single change
// is undefined, so a window holding two points yields ErrInsufficientData.
func (e *Estimator) Estimate(series forecasts.Series, window *time.Duration) (AssetMetrics, error) {
	if err := series.Validate(); err != nil {
		return AssetMetrics{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if window != nil {
		if *window <= 0 {
			return AssetMetrics{}, fmt.Errorf("%w: window must be positive, got %s", ErrConfiguration, *window)
		}
		series = series.Window(*window)
	}

	if series.Len() < 2 {
		return AssetMetrics{}, fmt.Errorf("%w: %s has %d point(s) in window, need at least 2",
			ErrInsufficientData, series.Ticker, series.Len())
	}

	changes, err := formulas.PercentChanges(series.Values())
	if err != nil {
		if errors.Is(err, formulas.ErrZeroBase) {
			return AssetMetrics{}, fmt.Errorf("%w: %s: %w", ErrInsufficientData, series.Ticker, err)
		}
		return AssetMetrics{}, err
	}
	if len(changes) < 2 {
		return AssetMetrics{}, fmt.Errorf("%w: %s has %d price change(s) in window, need at least 2",
			ErrInsufficientData, series.Ticker, len(changes))
	}

	metrics := AssetMetrics{
		Ticker:         series.Ticker,
		ExpectedReturn: formulas.AnnualizeReturn(formulas.Mean(changes)),
		Volatility:     formulas.AnnualizeVolatility(formulas.StdDev(changes)),
		Observations:   len(changes),
	}

	if !isFinite(metrics.ExpectedReturn) || !isFinite(metrics.Volatility) {
		return AssetMetrics{}, fmt.Errorf("%w: %s produced non-finite statistics", ErrInsufficientData, series.Ticker)
	}

	e.log.Debug().
		Str("ticker", metrics.Ticker).
		Int("observations", metrics.Observations).
		Float64("expected_return", metrics.ExpectedReturn).
		Float64("volatility", metrics.Volatility).
		Msg("Estimated asset metrics")

	return metrics, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
