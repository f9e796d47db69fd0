package forecasts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// FolderSource reads forecast_<TICKER>.csv files from a local directory.
type FolderSource struct {
	dir string
	log zerolog.Logger
}

// NewFolderSource creates a source reading from dir.
func NewFolderSource(dir string, log zerolog.Logger) *FolderSource {
	return &FolderSource{
		dir: dir,
		log: log.With().Str("component", "folder_source").Logger(),
	}
}

// Kind implements Source.
func (s *FolderSource) Kind() string {
	return "folder"
}

// Dir returns the directory being read.
func (s *FolderSource) Dir() string {
	return s.dir
}

// List implements Source. A missing directory is an error naming the directory;
// a directory without forecast files yields an empty list.
func (s *FolderSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("data folder %q not found: %w", s.dir, err)
		}
		return nil, fmt.Errorf("failed to read data folder %q: %w", s.dir, err)
	}

	tickers := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ticker, ok := TickerFromFilename(entry.Name()); ok {
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	if len(tickers) == 0 {
		s.log.Warn().Str("dir", s.dir).Msg("No forecast_*.csv files found")
	}

	return tickers, ctx.Err()
}

// Load implements Source.
func (s *FolderSource) Load(ctx context.Context, ticker string) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	if err := ValidateTicker(ticker); err != nil {
		return Series{}, err
	}

	path := filepath.Join(s.dir, FilenameForTicker(ticker))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Series{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return Series{}, fmt.Errorf("failed to open forecast for %s: %w", ticker, err)
	}
	defer f.Close()

	series, err := ParseCSV(f, ticker)
	if err != nil {
		return Series{}, err
	}

	s.log.Debug().Str("ticker", ticker).Int("points", series.Len()).Msg("Loaded forecast file")
	return series, nil
}
