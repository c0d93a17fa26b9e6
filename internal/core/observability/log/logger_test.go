package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLevelText(t *testing.T) {
	var l Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	require.Equal(t, LevelWarn, l)

	text, err := l.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "warn", string(text))
}

func TestLoggerLevels(t *testing.T) {
	l := New(LevelWarn)
	require.Equal(t, LevelWarn, l.GetLevel())
	require.False(t, l.Enabled(LevelInfo))
	require.True(t, l.Enabled(LevelError))

	l.SetLevel(LevelDebug)
	require.True(t, l.Enabled(LevelDebug))

	child := l.With(String("component", "test"))
	require.Equal(t, LevelDebug, child.GetLevel())
	child.Debug("fields", Int("n", 1), Error(errors.New("boom")), Float64("depth", 0.5))
}

func TestNop(t *testing.T) {
	l := NewNop()
	require.False(t, l.Enabled(LevelError))
	l.Error("dropped", Uint64("id", 7))
	require.NotNil(t, Provide())
}
