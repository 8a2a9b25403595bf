package logging_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range cases {
		level, err := logging.ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, level)
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := logging.ParseLevel("verbose")
		assert.ErrorContains(t, err, "unknown log level")
	})
}

func TestNewNop(t *testing.T) {
	logger := logging.NewNop()
	require.NotNil(t, logger)
	logger.Info("discarded")
}
