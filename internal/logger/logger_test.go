package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestApplyLevel prefers the override, then the configured value, then the fallback.
func TestApplyLevel(t *testing.T) {
	previous := Level()
	t.Cleanup(func() { SetLevel(previous) })

	require.NoError(t, ApplyLevel("debug", "error", "warn"))
	require.Equal(t, zapcore.DebugLevel, Level())

	require.NoError(t, ApplyLevel("", "error", "warn"))
	require.Equal(t, zapcore.ErrorLevel, Level())

	require.NoError(t, ApplyLevel("", "", "warn"))
	require.Equal(t, zapcore.WarnLevel, Level())

	require.ErrorIs(t, ApplyLevel("loud", "info", "warn"), ErrUnknownLevel)
	require.ErrorIs(t, ApplyLevel("", "loud", "warn"), ErrUnknownLevel)
	require.Equal(t, zapcore.WarnLevel, Level())
}

// TestFromContext_FallsBackToGlobal checks that an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithNameAndKV ensures named loggers and fields travel with the context.
func TestWithNameAndKV(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "controller")
	ctx = WithKV(ctx, "unit", "greenhouse-1")

	InfoKV(ctx, "Cycle finished", "active_alarms", 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "controller", entries[0].LoggerName)
	require.Equal(t, "Cycle finished", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "greenhouse-1", fields["unit"])
	require.EqualValues(t, 2, fields["active_alarms"])
}
