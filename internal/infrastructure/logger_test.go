package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsreports/internal/config"
)

func TestInitializeLoggerWritesJSONFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestTraceHandlerInjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "debug")

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.With("component", "test").InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "trace-123", first["trace_id"])
	assert.Equal(t, "test", first["component"])
	assert.NotContains(t, second, "trace_id")
}

func TestNewLoggerTextFormat(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "reporter.log")
	logger, err := NewLogger(config.LoggingConfig{
		Level:    "warn",
		Format:   "text",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.WarnContext(WithTraceID(context.Background(), "run-1"), "no data", "chart", "pie")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "dropped")
	assert.Contains(t, string(content), `msg="no data" chart=pie trace_id=run-1`)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace ID is kept")
	assert.NotEqual(t, id, GenerateTraceID())
}

// gatheredValue returns the counter or gauge value of the series whose
// labels match all of want.
func gatheredValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			matched := 0
			for _, lp := range metric.GetLabel() {
				if want[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched != len(want) {
				continue
			}
			if metric.GetCounter() != nil {
				return metric.GetCounter().GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	t.Fatalf("series %s %v not found", name, want)
	return 0
}

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRun("ventas", 42, time.Second, nil)
	m.ObserveRun("ventas", 0, time.Second, errors.New("boom"))
	m.ObserveChart("pareto", nil)
	m.ObserveMessage("Ventas", nil)

	assert.Equal(t, 1.0, gatheredValue(t, reg, "opsreports_runs_total", map[string]string{"report": "ventas", "status": "success"}))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "opsreports_runs_total", map[string]string{"report": "ventas", "status": "error"}))
	assert.Equal(t, 0.0, gatheredValue(t, reg, "opsreports_rows_selected", map[string]string{"report": "ventas"}))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "opsreports_charts_rendered_total", map[string]string{"kind": "pareto", "status": "success"}))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "opsreports_messages_sent_total", map[string]string{"group": "Ventas", "status": "success"}))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveRun("x", 1, 0, nil) })
}
