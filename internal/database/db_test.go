package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "forecasts.db")

	db, err := New(Config{Path: path, Name: "forecasts"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "forecasts", db.Name())
	assert.Equal(t, path, db.Path())
	assert.Equal(t, ProfileStandard, db.profile)

	require.NoError(t, db.Migrate())
	// Idempotent
	require.NoError(t, db.Migrate())

	var name string
	err = db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='forecasts'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "forecasts", name)
}

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		profile  DatabaseProfile
		contains string
	}{
		{"standard", ProfileStandard, "synchronous(NORMAL)"},
		{"cache", ProfileCache, "synchronous(OFF)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connStr := buildConnectionString("/tmp/x.db", tt.profile)
			assert.Contains(t, connStr, "journal_mode(WAL)")
			assert.Contains(t, connStr, tt.contains)
		})
	}
}
