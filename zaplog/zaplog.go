// Package zaplog adapts a zap logger to the regioncache Logger
// interface.
package zaplog

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bert82503/regioncache"
)

// Logger forwards cache log lines to a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ regioncache.Logger = (*Logger)(nil)

// New wraps an existing zap logger. Caller skip is adjusted so log lines
// report the cache call site rather than this adapter.
func New(l *zap.Logger) *Logger {
	return &Logger{
		sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

// NewProduction builds a JSON logger at the given level string. Levels
// other than "debug", "warn" and "error" fall back to info.
func NewProduction(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

func (l *Logger) CtxInfo(ctx context.Context, format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) CtxError(ctx context.Context, format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) CtxDebug(ctx context.Context, format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
