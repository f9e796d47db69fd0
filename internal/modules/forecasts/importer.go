package forecasts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ImportResult summarizes one import pass.
type ImportResult struct {
	Imported []string
	Failed   []LoadFailure
}

// Importer copies every series from a Source into a Store.
type Importer struct {
	from  Source
	store *Store
	log   zerolog.Logger
}

// NewImporter creates an importer from source into store.
func NewImporter(from Source, store *Store, log zerolog.Logger) *Importer {
	return &Importer{
		from:  from,
		store: store,
		log:   log.With().Str("component", "forecast_importer").Logger(),
	}
}

// Import copies all listed series. A ticker that fails to load or save is reported
// and skipped; listing failures abort the pass.
func (im *Importer) Import(ctx context.Context) (*ImportResult, error) {
	tickers, err := im.from.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s source: %w", im.from.Kind(), err)
	}

	result := &ImportResult{}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		series, err := im.from.Load(ctx, ticker)
		if err == nil {
			err = im.store.Save(ctx, series, im.from.Kind())
		}
		if err != nil {
			im.log.Warn().Err(err).Str("ticker", ticker).Msg("Skipping forecast")
			result.Failed = append(result.Failed, LoadFailure{Ticker: ticker, Err: err})
			continue
		}
		result.Imported = append(result.Imported, ticker)
	}

	im.log.Info().
		Int("imported", len(result.Imported)).
		Int("failed", len(result.Failed)).
		Str("source", im.from.Kind()).
		Msg("Forecast import completed")

	return result, nil
}
