package optimization

import (
	"fmt"

	"github.com/aristath/forecastfolio/pkg/formulas"
)

// EqualWeight returns the equal-weighted baseline: the arithmetic mean of the
// assets' expected returns and the arithmetic mean of their volatilities.
// The volatility is deliberately not combined through variances.
func EqualWeight(metrics map[string]AssetMetrics) (PortfolioMetrics, error) {
	if len(metrics) == 0 {
		return PortfolioMetrics{}, fmt.Errorf("%w: no assets to aggregate", ErrConfiguration)
	}

	returns := make([]float64, 0, len(metrics))
	vols := make([]float64, 0, len(metrics))
	for t, m := range metrics {
		if !isFinite(m.ExpectedReturn) || !isFinite(m.Volatility) {
			return PortfolioMetrics{}, fmt.Errorf("%w: metrics for %s are undefined", ErrConfiguration, t)
		}
		returns = append(returns, m.ExpectedReturn)
		vols = append(vols, m.Volatility)
	}

	return PortfolioMetrics{
		ExpectedReturn: formulas.Mean(returns),
		Volatility:     formulas.Mean(vols),
	}, nil
}
