package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"opsreports/internal/charts"
	"opsreports/internal/config"
	"opsreports/internal/dataprocessing"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/exporter"
	"opsreports/internal/files"
	"opsreports/internal/infrastructure"
	"opsreports/internal/storage"
)

// RunStore records run history. *storage.Store implements it.
type RunStore interface {
	Create(ctx context.Context, run *storage.Run) error
	Finish(ctx context.Context, run *storage.Run) error
}

// Request selects what a single run covers.
type Request struct {
	Report         string                      `json:"report"`
	Boundary       dataprocessing.DateBoundary `json:"boundary"`
	LocationOption int                         `json:"location_option"`
}

// ChartResult describes one rendered (or empty) chart.
type ChartResult struct {
	Kind       string   `json:"kind"`
	GroupBy    []string `json:"group_by"`
	Indicator  string   `json:"indicator"`
	Path       string   `json:"path,omitempty"`
	SeriesPath string   `json:"series_path,omitempty"`
	Points     int      `json:"points"`
	Total      string   `json:"total"`
	Empty      bool     `json:"empty"`
}

// Result is the outcome of a run.
type Result struct {
	RunID     string        `json:"run_id"`
	Report    string        `json:"report"`
	DateInput string        `json:"date_input"`
	Location  string        `json:"location"`
	RowsIn    int           `json:"rows_in"`
	RowsOut   int           `json:"rows_out"`
	Charts    []ChartResult `json:"charts"`
	Workbook  string        `json:"workbook,omitempty"`
	Steps     []*StepState  `json:"steps"`
	Duration  time.Duration `json:"duration"`
}

// EmptyCharts counts the charts that had no data.
func (r *Result) EmptyCharts() int {
	n := 0
	for _, c := range r.Charts {
		if c.Empty {
			n++
		}
	}
	return n
}

// Driver executes report definitions from a catalog.
type Driver struct {
	catalog  *config.Catalog
	pipeline config.PipelineConfig
	paths    *config.Paths
	store    RunStore
	metrics  *infrastructure.Metrics
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	cleaner  *files.Manager
	logger   *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithStore records every run in store.
func WithStore(store RunStore) Option {
	return func(d *Driver) { d.store = store }
}

// WithMetrics records run and chart metrics.
func WithMetrics(m *infrastructure.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// NewDriver creates a driver writing artifacts under paths.OutputDir.
func NewDriver(catalog *config.Catalog, pipeline config.PipelineConfig, paths *config.Paths, opts ...Option) *Driver {
	d := &Driver{
		catalog:  catalog,
		pipeline: pipeline,
		paths:    paths,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = infrastructure.WithComponent(d.logger, "reports")
	d.csv = exporter.NewCSVWriter(paths.OutputDir, d.logger)
	d.workbook = exporter.NewWorkbookWriter(paths.OutputDir, d.logger)
	d.cleaner = files.NewManager(paths.OutputDir)
	return d
}

// ClearCharts removes the *.png files left in the output directory by an
// earlier invocation, so the sender only posts what this invocation renders.
// Call it once before running one or more reports; Run never deletes charts.
func (d *Driver) ClearCharts(ctx context.Context) (int, error) {
	removed, err := d.cleaner.RemoveMatching(".", "*.png")
	if err != nil {
		return removed, apperrors.NewStorageError("failed to clear previous charts", err).
			WithContext("dir", d.paths.OutputDir)
	}
	if removed > 0 {
		d.logger.InfoContext(ctx, "previous charts cleared", slog.Int("removed", removed))
	}
	return removed, nil
}

// Catalog returns the catalog the driver runs from.
func (d *Driver) Catalog() *config.Catalog {
	return d.catalog
}

// Locations returns the location list behind the location menu.
func (d *Driver) Locations() []string {
	if len(d.catalog.Locations) > 0 {
		return d.catalog.Locations
	}
	return d.pipeline.Locations
}

// Run executes one report for the requested dates and location.
func (d *Driver) Run(ctx context.Context, req Request) (*Result, error) {
	report, ok := d.catalog.Report(req.Report)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("report %q", req.Report), nil).
			WithContext("report", req.Report)
	}

	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	logger := d.logger.With(slog.String("report", report.Name))
	start := time.Now()

	res := &Result{
		RunID:     runID,
		Report:    report.Name,
		DateInput: req.Boundary.Input,
	}
	run := &storage.Run{
		ID:        runID,
		Report:    report.Name,
		DateMode:  int(req.Boundary.Mode),
		DateInput: req.Boundary.Input,
		StartedAt: start.UTC(),
	}
	if d.store != nil {
		if err := d.store.Create(ctx, run); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "run started",
		slog.String("date_mode", req.Boundary.Mode.String()),
		slog.String("date_input", req.Boundary.Input),
		slog.Int("location_option", req.LocationOption))

	err := d.execute(ctx, logger, report, req, res)
	res.Duration = time.Since(start)

	d.metrics.ObserveRun(report.Name, res.RowsOut, res.Duration, err)
	d.finish(ctx, run, res, err)

	if err != nil {
		logger.ErrorContext(ctx, "run failed", apperrors.LogAttr(err))
		return res, err
	}

	logger.InfoContext(ctx, "run finished",
		slog.Int("rows_in", res.RowsIn),
		slog.Int("rows_out", res.RowsOut),
		slog.Int("charts", len(res.Charts)),
		slog.Int("empty_charts", res.EmptyCharts()),
		slog.Duration("duration", res.Duration))
	return res, nil
}

func (d *Driver) execute(ctx context.Context, logger *slog.Logger, report config.ReportDefinition, req Request, res *Result) error {
	track := func(name string, fn func(step *StepState) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := startStep(name)
		res.Steps = append(res.Steps, step)
		if err := fn(step); err != nil {
			step.Fail(err)
			return err
		}
		if step.Status == StepStatusActive {
			step.Complete(step.Rows)
		}
		logger.DebugContext(ctx, "step finished",
			slog.String("step", name),
			slog.String("status", string(step.Status)),
			slog.Int("rows", step.Rows),
			slog.Duration("duration", step.Duration()))
		return nil
	}

	source := d.paths.GetDataPath(report.FileName)
	sep := report.SeparatorRune()

	err := track(StepNormalize, func(step *StepState) error {
		if !report.Normalize {
			step.Skip("normalize disabled")
			return nil
		}
		normalized := d.paths.GetDataPath(NormalizedFileName(report.FileName))
		if err := dataprocessing.NormalizeSymbols(source, normalized); err != nil {
			return err
		}
		source, sep = normalized, ','
		step.Message = filepath.Base(normalized)
		return nil
	})
	if err != nil {
		return err
	}

	var table *dataprocessing.Table
	if err := track(StepLoad, func(step *StepState) error {
		var err error
		table, err = dataprocessing.LoadFile(source, sep, report.Sheet)
		if err != nil {
			return err
		}
		res.RowsIn = table.Len()
		step.Rows = table.Len()
		return nil
	}); err != nil {
		return err
	}

	if err := track(StepFilter, func(step *StepState) error {
		var err error
		table, err = dataprocessing.Filter{
			Columns:        report.RelevantColumns,
			LocationColumn: d.pipeline.LocationColumn,
			Locations:      d.Locations(),
			ZeroColumn:     d.pipeline.ZeroColumn,
		}.Apply(table)
		if err != nil {
			return err
		}
		step.Rows = table.Len()
		return nil
	}); err != nil {
		return err
	}

	if err := track(StepDates, func(step *StepState) error {
		var err error
		table, err = dataprocessing.SelectDateRange(table, report.DateColumn, report.Layouts(), req.Boundary)
		if err != nil {
			return err
		}
		step.Rows = table.Len()
		return nil
	}); err != nil {
		return err
	}

	if err := track(StepLocation, func(step *StepState) error {
		var err error
		table, res.Location, err = dataprocessing.SelectLocation(table, d.pipeline.LocationColumn, req.LocationOption, d.Locations())
		if err != nil {
			return err
		}
		step.Rows = table.Len()
		step.Message = res.Location
		return nil
	}); err != nil {
		return err
	}
	res.RowsOut = table.Len()

	var rendered []dataprocessing.Series
	if err := track(StepCharts, func(step *StepState) error {
		for _, chart := range report.Charts {
			if err := ctx.Err(); err != nil {
				return err
			}
			cr, series, err := d.renderChart(ctx, logger, table, chart, res)
			if err != nil {
				return err
			}
			res.Charts = append(res.Charts, cr)
			if !cr.Empty {
				rendered = append(rendered, series)
			}
		}
		step.Rows = len(rendered)
		return nil
	}); err != nil {
		return err
	}

	return track(StepExport, func(step *StepState) error {
		if len(rendered) == 0 {
			step.Skip("no data")
			return nil
		}
		path, err := d.workbook.Write(report.Name, rendered)
		if err != nil {
			return err
		}
		res.Workbook = path
		step.Rows = len(rendered)
		return nil
	})
}

// renderChart aggregates and renders one chart. A chart without data is
// returned as empty, not as an error.
func (d *Driver) renderChart(ctx context.Context, logger *slog.Logger, table *dataprocessing.Table, chart config.ChartDefinition, res *Result) (ChartResult, dataprocessing.Series, error) {
	cr := ChartResult{Kind: chart.Kind, GroupBy: chart.GroupBy, Indicator: chart.Indicator}

	series, err := Build(table, chart)
	if err != nil {
		return cr, series, err
	}
	cr.Points = series.Len()
	cr.Total = series.Total().String()

	kind := charts.Kind(chart.Kind)
	path, err := charts.Render(kind, series, chartOptions(chart, d.paths.OutputDir, d.pipeline.Unit, res))
	if errors.Is(err, charts.ErrNoData) {
		d.metrics.ObserveEmptyChart(chart.Kind)
		logger.WarnContext(ctx, "no data: probably a Sunday, holiday or no rejections",
			slog.String("kind", chart.Kind),
			slog.String("group_by", series.GroupName()),
			slog.Int("rows", table.Len()))
		cr.Empty = true
		return cr, series, nil
	}
	d.metrics.ObserveChart(chart.Kind, err)
	if err != nil {
		return cr, series, fmt.Errorf("render %s chart for %s: %w", chart.Kind, series.GroupName(), err)
	}
	cr.Path = path

	cr.SeriesPath, err = d.csv.WriteSeries(series)
	if err != nil {
		return cr, series, err
	}

	logger.InfoContext(ctx, "chart rendered",
		slog.String("file", filepath.Base(path)),
		slog.Int("points", cr.Points),
		slog.String("total", cr.Total))
	return cr, series, nil
}

// Build aggregates table for chart: top_n_filter restricts the rows to the
// leading categories first, top_n folds the tail into the other label.
func Build(table *dataprocessing.Table, chart config.ChartDefinition) (dataprocessing.Series, error) {
	order := dataprocessing.Descending
	if chart.Ascending {
		order = dataprocessing.Ascending
	}

	if chart.TopNFilter > 0 && len(chart.GroupBy) == 1 {
		ranking, err := dataprocessing.Aggregate(table, chart.GroupBy, chart.Indicator, dataprocessing.Descending)
		if err != nil {
			return dataprocessing.Series{}, err
		}
		table, err = dataprocessing.FilterLabels(table, chart.GroupBy[0], ranking.TopLabels(chart.TopNFilter))
		if err != nil {
			return dataprocessing.Series{}, err
		}
	}

	series, err := dataprocessing.Aggregate(table, chart.GroupBy, chart.Indicator, order)
	if err != nil {
		return dataprocessing.Series{}, err
	}
	return series.TopN(chart.TopN, chart.OtherLabel), nil
}

func chartOptions(chart config.ChartDefinition, outputDir, unit string, res *Result) charts.Options {
	return charts.Options{
		OutputDir:     outputDir,
		Width:         chart.Style.Width,
		Height:        chart.Style.Height,
		DPI:           chart.Style.DPI,
		FontSize:      chart.Style.FontSize,
		LabelSize:     chart.Style.LabelSize,
		Colors:        chart.Style.Colors,
		Unit:          unit,
		DateLabel:     res.DateInput,
		LocationLabel: res.Location,
	}
}

func (d *Driver) finish(ctx context.Context, run *storage.Run, res *Result, err error) {
	if d.store == nil {
		return
	}

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Location = res.Location
	run.RowsIn = res.RowsIn
	run.RowsOut = res.RowsOut
	run.Charts = len(res.Charts)
	run.EmptyCharts = res.EmptyCharts()
	run.Status = storage.StatusSuccess
	if err != nil {
		run.Status = storage.StatusFailed
		run.Error = err.Error()
	}

	// The run context may already be cancelled; history is still written.
	if ferr := d.store.Finish(context.WithoutCancel(ctx), run); ferr != nil {
		d.logger.ErrorContext(ctx, "failed to record run",
			slog.String("run_id", run.ID),
			slog.String("error", ferr.Error()))
	}
}

// NormalizedFileName is where the normalized copy of an export is written.
func NormalizedFileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "_normalized.csv"
}
