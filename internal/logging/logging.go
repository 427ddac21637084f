package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	initOnce sync.Once
	logger   *zap.Logger
	exitFunc = os.Exit
)

// L returns the shared application logger, initializing it on first use.
func L() *zap.Logger {
	initOnce.Do(func() {
		logger = newLogger()
	})
	return logger
}

func newLogger() *zap.Logger {
	var cfg zap.Config
	switch strings.ToLower(os.Getenv("JOGO_LOG_FORMAT")) {
	case "json", "structured":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// Console output goes to stderr so JSON output remains clean if enabled later.
		cfg.OutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("JOGO_LOG_LEVEL")))
	cfg.DisableCaller = !strings.EqualFold(os.Getenv("JOGO_LOG_SOURCE"), "true")
	cfg.DisableStacktrace = true

	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return built
}

func parseLevel(value string) zapcore.Level {
	switch strings.ToLower(value) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Replace swaps the shared logger. Subsequent calls to L return l.
func Replace(l *zap.Logger) {
	initOnce.Do(func() {})
	logger = l
}

// With returns a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Fatal logs the message at error level and exits with status 1.
func Fatal(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
	Sync()
	exitFunc(1)
}
