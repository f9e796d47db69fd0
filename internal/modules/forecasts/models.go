// Package forecasts loads per-asset price forecasts and keeps them in a local store.
package forecasts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a source has no forecast for a ticker.
var ErrNotFound = errors.New("forecast not found")

// ErrInvalidTicker is returned for tickers that cannot name a forecast file.
var ErrInvalidTicker = errors.New("invalid ticker")

// ErrUnsorted is returned when a series' timestamps are not strictly increasing.
var ErrUnsorted = errors.New("forecast timestamps are not strictly increasing")

const (
	filePrefix = "forecast_"
	fileSuffix = ".csv"
)

// Point is a single dated price forecast.
type Point struct {
	Time  time.Time `json:"time" msgpack:"t"`
	Value float64   `json:"value" msgpack:"v"`
}

// Series is the ordered forecast for one asset.
type Series struct {
	Ticker string  `json:"ticker"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Values returns the predicted values in time order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Last returns the latest timestamp, or the zero time for an empty series.
func (s Series) Last() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Time
}

// First returns the earliest timestamp, or the zero time for an empty series.
func (s Series) First() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Time
}

// Validate checks that timestamps are strictly increasing.
func (s Series) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("%w: %s at index %d (%s after %s)", ErrUnsorted, s.Ticker, i,
				s.Points[i].Time.Format(time.RFC3339), s.Points[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Window keeps the points newer than d before the series' last timestamp.
// The cutoff itself is excluded. The receiver is not modified.
func (s Series) Window(d time.Duration) Series {
	if len(s.Points) == 0 {
		return Series{Ticker: s.Ticker, Points: []Point{}}
	}

	cutoff := s.Last().Add(-d)
	start := len(s.Points)
	for i, p := range s.Points {
		if p.Time.After(cutoff) {
			start = i
			break
		}
	}

	points := make([]Point, len(s.Points)-start)
	copy(points, s.Points[start:])
	return Series{Ticker: s.Ticker, Points: points}
}

// Summary describes a stored or listed forecast without its points.
type Summary struct {
	Ticker     string    `json:"ticker"`
	PointCount int       `json:"point_count"`
	FirstDS    time.Time `json:"first_ds"`
	LastDS     time.Time `json:"last_ds"`
	Source     string    `json:"source"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TickerFromFilename extracts the ticker from a forecast_<TICKER>.csv file name.
func TickerFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	ticker := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if ticker == "" {
		return "", false
	}
	return ticker, true
}

// FilenameForTicker returns the forecast file name for a ticker.
func FilenameForTicker(ticker string) string {
	return filePrefix + ticker + fileSuffix
}

// ValidateTicker rejects empty tickers and tickers that could escape a data folder or key prefix.
func ValidateTicker(ticker string) error {
	if ticker == "" || len(ticker) > 32 || ticker == "." || ticker == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	for _, r := range ticker {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_' || r == '^' || r == '=':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
		}
	}
	return nil
}
