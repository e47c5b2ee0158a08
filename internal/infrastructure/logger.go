package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"opsreports/internal/config"
)

var (
	defaultLogger *slog.Logger
	defaultOnce   sync.Once

	logFile   *os.File
	logFileMu sync.Mutex
)

// InitializeLogger builds the process logger from cfg and installs it as
// the slog default. Only the first call has an effect.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	defaultOnce.Do(func() {
		defaultLogger, err = NewLogger(cfg)
		if defaultLogger != nil {
			slog.SetDefault(defaultLogger)
		}
	})
	return defaultLogger, err
}

// GetLogger returns the process logger, or slog.Default when uninitialized.
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// NewLogger creates a logger for cfg. Console output goes to stderr so the
// interactive prompts own stdout; "both" tees stderr and the log file.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var w io.Writer = os.Stderr

	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		logFileMu.Lock()
		logFile = f
		logFileMu.Unlock()

		w = f
		if strings.EqualFold(cfg.Output, "both") {
			w = io.MultiWriter(os.Stderr, f)
		}
	}

	if strings.EqualFold(cfg.Format, "text") {
		return newTraceLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: ParseLogLevel(cfg.Level),
		})), nil
	}
	return NewLoggerWithWriter(w, cfg.Level), nil
}

// NewLoggerWithWriter creates a JSON logger on w that stamps trace_id.
func NewLoggerWithWriter(w io.Writer, level string) *slog.Logger {
	return newTraceLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLogLevel(level),
	}))
}

func newTraceLogger(h slog.Handler) *slog.Logger {
	return slog.New(&traceHandler{Handler: h})
}

// traceHandler stamps each record with the run or request trace id carried
// by its context.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLogLevel converts a level name to slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		if strings.EqualFold(level, "warning") {
			return slog.LevelWarn
		}
		return slog.LevelInfo
	}
	return l
}

// CloseLogFile closes the log file opened by NewLogger, if any.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting undoes InitializeLogger.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	defaultLogger = nil
	defaultOnce = sync.Once{}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
