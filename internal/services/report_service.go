package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"opsreports/internal/config"
	"opsreports/internal/dataprocessing"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/files"
	"opsreports/internal/reports"
	"opsreports/internal/storage"
)

// Runner executes a report. *reports.Driver implements it.
type Runner interface {
	Catalog() *config.Catalog
	Locations() []string
	ClearCharts(ctx context.Context) (int, error)
	Run(ctx context.Context, req reports.Request) (*reports.Result, error)
}

// History reads recorded runs. *storage.Store implements it.
type History interface {
	List(ctx context.Context, limit int) ([]storage.Run, error)
	Get(ctx context.Context, id string) (*storage.Run, error)
}

// RunParams are the user-facing parameters of a run.
type RunParams struct {
	DateMode       int    `json:"date_mode" validate:"required,gte=1,lte=5"`
	DateInput      string `json:"date_input" validate:"required,max=64"`
	LocationOption int    `json:"location_option" validate:"required,gte=1"`
}

// ReportSummary describes a configured report.
type ReportSummary struct {
	Name      string   `json:"name"`
	FileName  string   `json:"file_name"`
	Charts    []string `json:"charts"`
	Locations []string `json:"locations"`
}

// ReportService runs reports one at a time and exposes their history.
type ReportService struct {
	runner    Runner
	history   History
	discovery *files.Discovery
	outputDir string
	layout    string
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewReportService creates a report service. history may be nil.
func NewReportService(runner Runner, history History, outputDir, layout string, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if layout == "" {
		layout = config.DefaultDateLayout
	}
	return &ReportService{
		runner:    runner,
		history:   history,
		discovery: files.NewDiscovery(""),
		outputDir: outputDir,
		layout:    layout,
		logger:    logger.With(slog.String("service", "reports")),
	}
}

// ListReports returns the configured reports with their chart files.
func (s *ReportService) ListReports(ctx context.Context) []ReportSummary {
	catalog := s.runner.Catalog()
	out := make([]ReportSummary, 0, len(catalog.Reports))
	for _, r := range catalog.Reports {
		summary := ReportSummary{
			Name:      r.Name,
			FileName:  r.FileName,
			Locations: dataprocessing.LocationMenu(s.runner.Locations()),
		}
		for _, c := range r.Charts {
			summary.Charts = append(summary.Charts, fmt.Sprintf("%s:%s:%s", c.Kind, strings.Join(c.GroupBy, "_"), c.Indicator))
		}
		out = append(out, summary)
	}
	return out
}

// Run parses params and executes the named report. Concurrent calls fail
// with ErrRunInProgress.
func (s *ReportService) Run(ctx context.Context, name string, params RunParams) (*reports.Result, error) {
	boundary, err := dataprocessing.ParseBoundary(dataprocessing.DateMode(params.DateMode), params.DateInput, s.layout)
	if err != nil {
		return nil, err
	}

	if !s.acquire() {
		return nil, apperrors.NewAppValidationError("run rejected", ErrRunInProgress).
			WithContext("report", name)
	}
	defer s.release()

	s.logger.InfoContext(ctx, "running report",
		slog.String("report", name),
		slog.Int("date_mode", params.DateMode),
		slog.String("date_input", params.DateInput),
		slog.Int("location_option", params.LocationOption))

	// each HTTP run is one invocation: the output holds only its charts
	if _, err := s.runner.ClearCharts(ctx); err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, reports.Request{
		Report:         name,
		Boundary:       boundary,
		LocationOption: params.LocationOption,
	})
}

// Running reports whether a run is in progress.
func (s *ReportService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ReportService) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *ReportService) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// ListRuns returns the most recent runs.
func (s *ReportService) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	if s.history == nil {
		return nil, apperrors.NewConfigError("list runs", ErrHistoryDisabled)
	}
	return s.history.List(ctx, limit)
}

// GetRun returns one recorded run.
func (s *ReportService) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	if s.history == nil {
		return nil, apperrors.NewConfigError("get run", ErrHistoryDisabled)
	}
	return s.history.Get(ctx, id)
}

// ListCharts returns the chart images currently in the output directory.
func (s *ReportService) ListCharts(ctx context.Context) ([]files.FileInfo, error) {
	charts, err := s.discovery.FindCharts(s.outputDir)
	if err != nil {
		return nil, apperrors.NewStorageError("list charts", err)
	}
	return charts, nil
}
