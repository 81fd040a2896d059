package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"advertisement-service/internal/config"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers splits informational output (stdout) from error output (stderr).
// When file logging is enabled both also go to a rotated log file.
type Loggers struct {
	InfoLogger  *zap.Logger
	ErrorLogger *zap.Logger

	rotator *lumberjack.Logger
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func SetupLogger(level string, file config.LogFileConfig) (*Loggers, error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	infoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel && lvl < zapcore.ErrorLevel
	})
	errorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel && lvl >= zapcore.ErrorLevel
	})

	infoCores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), infoLevel)}
	errorCores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), errorLevel)}

	var rotator *lumberjack.Logger
	if file.Enabled && file.Path != "" {
		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    file.MaxSize,
			MaxBackups: file.MaxBackups,
			MaxAge:     file.MaxAge,
			Compress:   file.Compress,
			LocalTime:  true,
		}
		fileSink := zapcore.AddSync(rotator)
		infoCores = append(infoCores, zapcore.NewCore(encoder, fileSink, infoLevel))
		errorCores = append(errorCores, zapcore.NewCore(encoder, fileSink, errorLevel))
	}

	return &Loggers{
		InfoLogger:  zap.New(zapcore.NewTee(infoCores...), zap.AddCaller()),
		ErrorLogger: zap.New(zapcore.NewTee(errorCores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		rotator:     rotator,
	}, nil
}

// NewNop returns loggers that discard everything.
func NewNop() *Loggers {
	return &Loggers{InfoLogger: zap.NewNop(), ErrorLogger: zap.NewNop()}
}

// Sync flushes buffered entries and closes the log file, if any.
func (l *Loggers) Sync() error {
	_ = l.InfoLogger.Sync()
	_ = l.ErrorLogger.Sync()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}
