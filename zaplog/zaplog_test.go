package zaplog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerForwardsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	ctx := context.Background()
	l.CtxInfo(ctx, "hello %s", "world")
	l.CtxError(ctx, "boom %d", 7)
	l.CtxDebug(ctx, "quiet")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "boom 7", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "quiet", entries[2].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestLoggerRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.CtxDebug(context.Background(), "dropped")
	assert.Empty(t, logs.All())
}

func TestNewProductionLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		l, err := NewProduction(level)
		assert.NoError(t, err)
		assert.NotNil(t, l)
	}
}
