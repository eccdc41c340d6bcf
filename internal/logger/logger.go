package logger

import (
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger to provide logging functionality
type Logger struct {
	*zap.SugaredLogger
}

// Global logger for convenience
var L *Logger

// NewLogger creates a Logger at the level configured in cfg
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	level := types.LogLevelInfo
	if cfg != nil && cfg.Logging.Level != "" {
		level = cfg.Logging.Level
	}
	return newLogger(level)
}

func newLogger(level types.LogLevel) (*Logger, error) {
	zc := zap.NewProductionConfig()
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zapLevel(level))

	zapLogger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		SugaredLogger: zapLogger.Sugar(),
	}, nil
}

// NewNopLogger returns a logger that discards everything, used by tests
func NewNopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func zapLevel(level types.LogLevel) zapcore.Level {
	switch level {
	case types.LogLevelDebug:
		return zapcore.DebugLevel
	case types.LogLevelWarn:
		return zapcore.WarnLevel
	case types.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Initialize default logger and set it as global while also using Dependency Injection.
// Scripts such as cmd/migrate use the global; everything else gets it injected.
func init() {
	L, _ = newLogger(types.LogLevelInfo)
}

// With returns a child logger carrying the given key-value pairs
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}
