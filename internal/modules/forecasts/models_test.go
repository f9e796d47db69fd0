package forecasts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailySeries(ticker string, values ...float64) Series {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Time: start.AddDate(0, 0, i), Value: v}
	}
	return Series{Ticker: ticker, Points: points}
}

func TestSeries_Window(t *testing.T) {
	s := dailySeries("AAA", 1, 2, 3, 4, 5)

	t.Run("cutoff is exclusive", func(t *testing.T) {
		w := s.Window(2 * 24 * time.Hour)
		assert.Equal(t, []float64{4, 5}, w.Values())
	})

	t.Run("window longer than series keeps everything", func(t *testing.T) {
		w := s.Window(365 * 24 * time.Hour)
		assert.Equal(t, s.Values(), w.Values())
	})

	t.Run("does not modify receiver", func(t *testing.T) {
		w := s.Window(24 * time.Hour)
		w.Points[0].Value = 100
		assert.Equal(t, 5.0, s.Points[4].Value)
	})

	t.Run("empty series", func(t *testing.T) {
		w := Series{Ticker: "X"}.Window(time.Hour)
		assert.Equal(t, 0, w.Len())
		assert.Equal(t, "X", w.Ticker)
	})
}

func TestSeries_Validate(t *testing.T) {
	assert.NoError(t, dailySeries("AAA", 1, 2, 3).Validate())

	s := dailySeries("AAA", 1, 2, 3)
	s.Points[2].Time = s.Points[1].Time
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsorted))
	assert.Contains(t, err.Error(), "AAA")
}

func TestSeries_FirstLast(t *testing.T) {
	s := dailySeries("AAA", 1, 2, 3)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), s.First())
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), s.Last())
	assert.True(t, Series{}.Last().IsZero())
}

func TestTickerFromFilename(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		ok     bool
	}{
		{"forecast_AAPL.csv", "AAPL", true},
		{"forecast_BRK.B.csv", "BRK.B", true},
		{"forecast_.csv", "", false},
		{"AAPL.csv", "", false},
		{"forecast_AAPL.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker, ok := TickerFromFilename(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ticker, ticker)
		})
	}

	assert.Equal(t, "forecast_MSFT.csv", FilenameForTicker("MSFT"))
}

func TestValidateTicker(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK.B", "^GSPC", "EURUSD=X", "btc-usd"} {
		assert.NoError(t, ValidateTicker(ok), ok)
	}
	for _, bad := range []string{"", "..", "../etc", "a/b", "a b"} {
		assert.ErrorIs(t, ValidateTicker(bad), ErrInvalidTicker, bad)
	}
}
