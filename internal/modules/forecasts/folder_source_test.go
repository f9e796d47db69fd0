package forecasts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestFolderSource_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "forecast_MSFT.csv", "ds,yhat\n")
	writeFile(t, dir, "forecast_AAPL.csv", "ds,yhat\n")
	writeFile(t, dir, "notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "forecast_DIR.csv"), 0755))

	src := NewFolderSource(dir, zerolog.Nop())
	tickers, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
	assert.Equal(t, "folder", src.Kind())
}

func TestFolderSource_ListEmptyFolder(t *testing.T) {
	src := NewFolderSource(t.TempDir(), zerolog.Nop())
	tickers, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickers)
}

func TestFolderSource_MissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nope")
	src := NewFolderSource(dir, zerolog.Nop())

	_, err := src.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)
}

func TestFolderSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "forecast_AAPL.csv", "ds,yhat\n2025-01-01,100\n2025-01-02,101\n")
	src := NewFolderSource(dir, zerolog.Nop())

	s, err := src.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, []float64{100, 101}, s.Values())

	_, err = src.Load(context.Background(), "MSFT")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Load(context.Background(), "../AAPL")
	assert.ErrorIs(t, err, ErrInvalidTicker)
}

func TestFolderSource_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFolderSource(t.TempDir(), zerolog.Nop()).Load(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
