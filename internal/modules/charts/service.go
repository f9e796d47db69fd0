// Package charts provides services for generating chart data from forecasts and run results.
package charts

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/forecastfolio/internal/modules/forecasts"
	"github.com/aristath/forecastfolio/internal/modules/optimization"
	"github.com/aristath/forecastfolio/pkg/formulas"
	"github.com/rs/zerolog"
)

// DefaultSMAPeriod is the moving-average overlay used when none is requested.
const DefaultSMAPeriod = 20

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string   `json:"time"`          // YYYY-MM-DD format
	Value float64  `json:"value"`         // Predicted price
	SMA   *float64 `json:"sma,omitempty"` // Moving average, omitted until defined
}

// ScatterPoint places one asset on the risk/return plane.
type ScatterPoint struct {
	Ticker         string  `json:"ticker"`
	Volatility     float64 `json:"volatility"`
	ExpectedReturn float64 `json:"expected_return"`
}

// Service provides chart data operations
type Service struct {
	loader *forecasts.Loader
	log    zerolog.Logger
}

// NewService creates a new charts service
func NewService(loader *forecasts.Loader, log zerolog.Logger) *Service {
	return &Service{
		loader: loader,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// GetForecastChart returns the forecast line for a ticker with an SMA overlay.
// dateRange (1M, 3M, 6M, 1Y, all) is measured back from the last forecast date,
// since forecasts extend past today.
func (s *Service) GetForecastChart(ctx context.Context, ticker string, smaPeriod int, dateRange string) ([]ChartDataPoint, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}
	if smaPeriod < 1 {
		return nil, fmt.Errorf("invalid sma period: %d", smaPeriod)
	}

	window, err := parseDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	series, err := s.loader.Load(ctx, ticker)
	if err != nil {
		return nil, err
	}

	// The average is computed over the whole series so the overlay is
	// defined from the first visible point whenever enough history exists.
	sma := formulas.SimpleMovingAverage(series.Values(), smaPeriod)
	visibleFrom := 0
	if window > 0 {
		visibleFrom = series.Len() - series.Window(window).Len()
	}

	points := make([]ChartDataPoint, 0, series.Len()-visibleFrom)
	for i := visibleFrom; i < series.Len(); i++ {
		p := series.Points[i]
		point := ChartDataPoint{
			Time:  p.Time.Format("2006-01-02"),
			Value: p.Value,
		}
		if !math.IsNaN(sma[i]) {
			v := sma[i]
			point.SMA = &v
		}
		points = append(points, point)
	}

	s.log.Debug().Str("ticker", ticker).Int("points", len(points)).Msg("Built forecast chart")
	return points, nil
}

// RiskReturnScatter returns one point per asset, sorted by ticker.
func RiskReturnScatter(assets []optimization.AssetMetrics) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(assets))
	for _, a := range assets {
		points = append(points, ScatterPoint{
			Ticker:         a.Ticker,
			Volatility:     a.Volatility,
			ExpectedReturn: a.ExpectedReturn,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Ticker < points[j].Ticker
	})
	return points
}

// parseDateRange converts a range string to a lookback duration. Zero means everything.
func parseDateRange(rangeStr string) (time.Duration, error) {
	const day = 24 * time.Hour

	switch rangeStr {
	case "", "all":
		return 0, nil
	case "1M":
		return 30 * day, nil
	case "3M":
		return 91 * day, nil
	case "6M":
		return 182 * day, nil
	case "1Y":
		return 365 * day, nil
	default:
		return 0, fmt.Errorf("invalid range: %s (must be 1M, 3M, 6M, 1Y or all)", rangeStr)
	}
}
