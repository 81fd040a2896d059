package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"advertisement-service/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := SetupLogger("verbose", config.LogFileConfig{})
	require.Error(t, err)
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ads.log")

	loggers, err := SetupLogger("debug", config.LogFileConfig{Enabled: true, Path: path, MaxSize: 1})
	require.NoError(t, err)

	loggers.InfoLogger.Info("advertisement created", zap.Int64("id", 7))
	loggers.ErrorLogger.Error("store failure", zap.Error(errors.New("disk full")))
	require.NoError(t, loggers.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"advertisement created"`)
	require.Contains(t, string(data), `"error":"disk full"`)
}
