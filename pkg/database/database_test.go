package database

import (
	"context"
	"path/filepath"
	"testing"

	"advertisement-service/internal/config"

	"github.com/stretchr/testify/require"
)

func TestNewDatabaseCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ads.db")

	db, err := NewDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM advertisement`))
	require.Zero(t, count)

	// running it again against an existing table is a no-op
	require.NoError(t, EnsureSchema(context.Background(), db, config.DriverSQLite))
}

func TestNewDatabaseUnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.DatabaseConfig{Driver: "postgres"})
	require.Error(t, err)
}
