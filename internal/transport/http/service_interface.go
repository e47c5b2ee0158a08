package http

import (
	"context"

	"opsreports/internal/files"
	"opsreports/internal/reports"
	"opsreports/internal/services"
	"opsreports/internal/storage"
)

// ReportServiceInterface defines the report operations the handlers need
type ReportServiceInterface interface {
	ListReports(ctx context.Context) []services.ReportSummary
	Run(ctx context.Context, name string, params services.RunParams) (*reports.Result, error)
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (*storage.Run, error)
	ListCharts(ctx context.Context) ([]files.FileInfo, error)
}
