package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/claimsdesk/fnol/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLoggerWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG")

	logger.Slog().Debug("intake started", slog.Int64("work_item_id", 3))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "intake started", record["msg"])
	assert.Equal(t, float64(3), record["work_item_id"])
}

func TestNewLoggerWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Slog().Info("ignored")
	assert.Empty(t, buf.String())
}

func TestContextHandler_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-9")
	logger.Slog().InfoContext(ctx, "handled")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "corr-1", record["correlation_id"])
	assert.Equal(t, "req-9", record["request_id"])
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "corr-2")
	logger.WithContext(ctx).Slog().Info("scoped")

	assert.Contains(t, buf.String(), `"correlation_id":"corr-2"`)
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestContextIDs_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.NotEqual(t, NewCorrelationID(), NewCorrelationID())
}
