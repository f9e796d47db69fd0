package forecasts

import "context"

// Source provides forecast series by ticker.
type Source interface {
	// List returns the available tickers in ascending order.
	List(ctx context.Context) ([]string, error)
	// Load returns the series for a ticker, or an error wrapping ErrNotFound.
	Load(ctx context.Context, ticker string) (Series, error)
	// Kind names the source for logs and metrics (folder, s3, store).
	Kind() string
}
