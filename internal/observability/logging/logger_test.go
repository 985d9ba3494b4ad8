package logging_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"covid-dashboard/internal/handler/http/requestid"
	"covid-dashboard/internal/observability/logging"
)

func TestNewLogger(t *testing.T) {
	logger := logging.NewLogger()
	require.NotNil(t, logger)
	require.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := logging.NewLogger()
	require.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewTextLogger(t *testing.T) {
	logger := logging.NewTextLogger()
	require.NotNil(t, logger)
	require.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Without a request ID the logger is returned unchanged.
	require.Equal(t, base, logging.WithRequestID(context.Background(), base))

	ctx := requestid.WithRequestID(context.Background(), "abc-123")
	withID := logging.WithRequestID(ctx, base)
	require.NotEqual(t, base, withID)
}

func TestLoggerContext(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := logging.WithLogger(context.Background(), logger)
	require.Equal(t, logger, logging.FromContext(ctx))

	// Missing logger falls back to the default.
	require.Equal(t, slog.Default(), logging.FromContext(context.Background()))
}
