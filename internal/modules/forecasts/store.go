package forecasts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Store keeps imported forecasts in SQLite so the optimizer does not depend on the
// data folder or bucket being reachable. Points are stored as a msgpack blob per ticker.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a store over a migrated forecasts database.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "forecast_store").Logger(),
	}
}

// Kind implements Source.
func (s *Store) Kind() string {
	return "store"
}

// Save inserts or replaces the series for its ticker. source records where it came from.
func (s *Store) Save(ctx context.Context, series Series, source string) error {
	if err := ValidateTicker(series.Ticker); err != nil {
		return err
	}
	if err := series.Validate(); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(series.Points)
	if err != nil {
		return fmt.Errorf("failed to encode points for %s: %w", series.Ticker, err)
	}

	var first, last sql.NullInt64
	if series.Len() > 0 {
		first = sql.NullInt64{Int64: series.First().Unix(), Valid: true}
		last = sql.NullInt64{Int64: series.Last().Unix(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forecasts (ticker, points, point_count, first_ds, last_ds, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			points = excluded.points,
			point_count = excluded.point_count,
			first_ds = excluded.first_ds,
			last_ds = excluded.last_ds,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, series.Ticker, blob, series.Len(), first, last, source, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save forecast for %s: %w", series.Ticker, err)
	}

	s.log.Debug().Str("ticker", series.Ticker).Int("points", series.Len()).Msg("Saved forecast")
	return nil
}

// Load implements Source.
func (s *Store) Load(ctx context.Context, ticker string) (Series, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT points FROM forecasts WHERE ticker = ?", ticker).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Series{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	if err != nil {
		return Series{}, fmt.Errorf("failed to load forecast for %s: %w", ticker, err)
	}

	var points []Point
	if err := msgpack.Unmarshal(blob, &points); err != nil {
		return Series{}, fmt.Errorf("failed to decode points for %s: %w", ticker, err)
	}
	for i := range points {
		points[i].Time = points[i].Time.UTC()
	}
	if points == nil {
		points = []Point{}
	}

	return Series{Ticker: ticker, Points: points}, nil
}

// List implements Source.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ticker FROM forecasts ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

// Summaries returns stored forecast metadata ordered by ticker.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, point_count, first_ds, last_ds, source, updated_at
		FROM forecasts ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			sum         Summary
			first, last sql.NullInt64
			updatedAt   int64
		)
		if err := rows.Scan(&sum.Ticker, &sum.PointCount, &first, &last, &sum.Source, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forecast summary: %w", err)
		}
		if first.Valid {
			sum.FirstDS = time.Unix(first.Int64, 0).UTC()
		}
		if last.Valid {
			sum.LastDS = time.Unix(last.Int64, 0).UTC()
		}
		sum.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes a ticker. Deleting a missing ticker is not an error.
func (s *Store) Delete(ctx context.Context, ticker string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM forecasts WHERE ticker = ?", ticker); err != nil {
		return fmt.Errorf("failed to delete forecast for %s: %w", ticker, err)
	}
	return nil
}
