package optimization

import "time"

// AssetMetrics holds the annualized figures derived from one asset's forecast.
type AssetMetrics struct {
	Ticker         string  `json:"ticker"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	Observations   int     `json:"observations"` // number of period-over-period changes used
}

// PortfolioWeights maps ticker to weight in [0, 1]; weights sum to 1.
type PortfolioWeights map[string]float64

// Sum returns the total weight.
func (w PortfolioWeights) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// PortfolioMetrics holds aggregate figures for one allocation.
type PortfolioMetrics struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
}

// OptimizedPortfolio is the maximum-Sharpe allocation of a run.
type OptimizedPortfolio struct {
	Weights PortfolioWeights `json:"weights"`
	Metrics PortfolioMetrics `json:"metrics"`
	Sharpe  float64          `json:"sharpe"`
}

// Warning reports an asset excluded from a run.
type Warning struct {
	Ticker  string `json:"ticker"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Exclusion reasons used in warnings and metrics.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonLoadFailed       = "load_failed"
	ReasonInvalidSeries    = "invalid_series"
)

// Request is the input of one optimization run.
// Window of zero means the full series.
type Request struct {
	Tickers []string
	Window  time.Duration
}

// Report is the full output of one optimization run.
type Report struct {
	RunID       string             `json:"run_id"`
	WindowDays  int                `json:"window_days"`
	Assets      []AssetMetrics     `json:"assets"`
	Warnings    []Warning          `json:"warnings"`
	EqualWeight PortfolioMetrics   `json:"equal_weight"`
	Optimized   OptimizedPortfolio `json:"optimized"`
	GeneratedAt time.Time          `json:"generated_at"`
}
