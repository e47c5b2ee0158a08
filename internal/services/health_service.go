package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	outputDir string
	store     Pinger
	reports   *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// Readiness states reported per dependency and overall
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDisabled = "disabled"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. store and reports may be nil.
func NewHealthService(version, outputDir string, store Pinger, reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		outputDir: outputDir,
		store:     store,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck checks the output directory and the run store
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"output":  hs.checkOutput(),
			"history": hs.checkStore(ctx),
			"runner":  hs.checkRunner(),
		},
	}

	for name, s := range status.Services {
		if s.Status == StatusNotReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "dependency not ready",
				slog.String("dependency", name),
				slog.String("message", s.Message))
		}
	}
	return status
}

func (hs *HealthService) checkOutput() ServiceHealth {
	info, err := os.Stat(hs.outputDir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("output directory not found: %s", hs.outputDir)}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkStore(ctx context.Context) ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{Status: StatusDisabled}
	}
	if err := hs.store.Ping(ctx); err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkRunner() ServiceHealth {
	if hs.reports != nil && hs.reports.Running() {
		return ServiceHealth{Status: StatusReady, Message: "run in progress"}
	}
	return ServiceHealth{Status: StatusReady}
}
