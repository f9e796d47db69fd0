package forecasts

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultLoadConcurrency = 4

// LoadObserver receives load timings. *metrics.Recorder satisfies it.
type LoadObserver interface {
	RecordLoad(source string, seconds float64)
}

// LoadFailure records a ticker that could not be loaded.
type LoadFailure struct {
	Ticker string
	Err    error
}

// Loader loads many series from a Source concurrently.
// Concurrent requests for the same ticker share one underlying load.
type Loader struct {
	source   Source
	observer LoadObserver
	group    singleflight.Group
	limit    int
	log      zerolog.Logger
}

// NewLoader creates a loader over source. observer may be nil.
func NewLoader(source Source, observer LoadObserver, log zerolog.Logger) *Loader {
	return &Loader{
		source:   source,
		observer: observer,
		limit:    defaultLoadConcurrency,
		log:      log.With().Str("component", "forecast_loader").Logger(),
	}
}

// Source returns the wrapped source.
func (l *Loader) Source() Source {
	return l.source
}

// Load loads one series through the shared in-flight group.
func (l *Loader) Load(ctx context.Context, ticker string) (Series, error) {
	v, err, shared := l.group.Do(ticker, func() (interface{}, error) {
		start := time.Now()
		series, err := l.source.Load(ctx, ticker)
		if l.observer != nil {
			l.observer.RecordLoad(l.source.Kind(), time.Since(start).Seconds())
		}
		return series, err
	})
	if err != nil {
		return Series{}, err
	}
	if shared {
		l.log.Debug().Str("ticker", ticker).Msg("Shared in-flight forecast load")
	}

	// Callers own their copy of the points.
	series := v.(Series)
	points := make([]Point, len(series.Points))
	copy(points, series.Points)
	return Series{Ticker: series.Ticker, Points: points}, nil
}

// LoadMany loads tickers concurrently. Series are returned in request order with
// failed tickers omitted and reported in failures. The error is non-nil only when
// ctx is done.
func (l *Loader) LoadMany(ctx context.Context, tickers []string) ([]Series, []LoadFailure, error) {
	results := make([]Series, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, ticker := range tickers {
		g.Go(func() error {
			results[i], errs[i] = l.Load(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	series := make([]Series, 0, len(tickers))
	var failures []LoadFailure
	for i, ticker := range tickers {
		if errs[i] != nil {
			l.log.Warn().Err(errs[i]).Str("ticker", ticker).Msg("Failed to load forecast")
			failures = append(failures, LoadFailure{Ticker: ticker, Err: errs[i]})
			continue
		}
		series = append(series, results[i])
	}

	return series, failures, nil
}
