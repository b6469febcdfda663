package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesJSONFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := InitLogger(dir, true)
	require.NoError(t, err)

	logger.Debug("session started", "session_id", "s-1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session started"`)
	assert.Contains(t, string(data), `"session_id":"s-1"`)
	assert.Contains(t, string(data), `"service":"kashar"`)
}

func TestInitLoggerInfoLevelDropsDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	logger, closer, err := InitLogger(dir, false)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInitExportsSpansAndMetrics(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(context.Background(), Options{LogDir: dir, Version: "test", MetricInterval: time.Hour})
	require.NoError(t, err)

	_, span := p.Tracer.Start(context.Background(), "tutor.message")
	span.End()
	counter, err := p.Meter.Int64Counter("kashar.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, p.Shutdown(context.Background()))

	traces, err := os.ReadFile(filepath.Join(dir, TracesFile))
	require.NoError(t, err)
	assert.Contains(t, string(traces), "tutor.message")

	metrics, err := os.ReadFile(filepath.Join(dir, MetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "kashar.test")
}
