package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, DriverSQLite, cfg.Database.Driver)
	require.Equal(t, "ads.db", cfg.Database.Path)
	require.Equal(t, "info", cfg.Logger.Level)
	require.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
http:
  port: 9090
  timeout: 3s
database:
  driver: sqlite
  path: data/store.db
tracing:
  service_name: ads-test
logger:
  level: debug
  file:
    enabled: true
    max_size: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.HTTP.Port)
	require.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, "data/store.db", cfg.Database.Path)
	require.Equal(t, "ads-test", cfg.Tracing.ServiceName)
	require.Equal(t, "debug", cfg.Logger.Level)
	require.True(t, cfg.Logger.File.Enabled)
	require.Equal(t, 5, cfg.Logger.File.MaxSize)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_PATH", "override.db")
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "override.db", cfg.Database.Path)
	require.Equal(t, 7070, cfg.HTTP.Port)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: DriverMySQL, User: "u", Password: "p", Host: "db", Port: "3306", Name: "ads"}
	require.Equal(t, "u:p@tcp(db:3306)/ads?parseTime=true", mysql.DSN())

	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "./data//ads.db"}
	require.Contains(t, sqlite.DSN(), "data/ads.db?_pragma=journal_mode(WAL)")
}
