package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Debug("hello", "stage", "src")

	require.Same(t, logger, FromContext(ctx))
	assert.Contains(t, buf.String(), "stage=src")
}

func TestFromContext_MissingLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestWith_AttachesAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := With(WithLogger(context.Background(), logger), "schema", "Demo")
	FromContext(ctx).Debug("resolved", "count", 3)

	assert.Contains(t, buf.String(), "schema=Demo")
	assert.Contains(t, buf.String(), "count=3")
}
