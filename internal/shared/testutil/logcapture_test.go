package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCaptureKeepsBoundAttrs(t *testing.T) {
	logger, capture := NewTestLogger(t)

	logger.With(slog.String("component", "reports")).WithGroup("run").
		Info("run finished", slog.Int("rows", 3))
	logger.Error("boom")

	r, ok := capture.Find("finished")
	require.True(t, ok)
	assert.Equal(t, "reports", r.Attrs["component"])
	assert.Equal(t, int64(3), r.Attrs["run.rows"])
	assert.Equal(t, 1, capture.Count(slog.LevelError))
	AssertLogged(t, capture, slog.LevelInfo, "run finished")
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "nested/data.csv", LostSalesCSV)
	assert.Equal(t, "data.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, LostSalesCSV, string(data))
}
