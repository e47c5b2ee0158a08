package reports

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsreports/internal/config"
	"opsreports/internal/dataprocessing"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/infrastructure"
	"opsreports/internal/shared/testutil"
	"opsreports/internal/storage"
)

type memoryStore struct {
	created  []storage.Run
	finished []storage.Run
}

func (m *memoryStore) Create(_ context.Context, run *storage.Run) error {
	m.created = append(m.created, *run)
	return nil
}

func (m *memoryStore) Finish(_ context.Context, run *storage.Run) error {
	m.finished = append(m.finished, *run)
	return nil
}

type fixture struct {
	driver  *Driver
	paths   *config.Paths
	store   *memoryStore
	logs    *testutil.LogCapture
	metrics *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithCatalog(t, testutil.CatalogYAML)
}

func newFixtureWithCatalog(t *testing.T, catalogYAML string) fixture {
	t.Helper()
	base := t.TempDir()

	paths, err := config.GetPaths(config.PathsConfig{BaseDir: base})
	require.NoError(t, err)
	testutil.WriteFile(t, paths.DataDir, "venta_perdida.csv", testutil.LostSalesCSV)

	catalog, err := config.ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)

	logger, logs := testutil.NewTestLogger(t)
	store := &memoryStore{}
	reg := prometheus.NewRegistry()

	d := NewDriver(catalog, config.Default().Pipeline, paths,
		WithStore(store),
		WithMetrics(infrastructure.NewMetrics(reg)),
		WithLogger(logger))

	return fixture{driver: d, paths: paths, store: store, logs: logs, metrics: reg}
}

func boundary(t *testing.T, mode dataprocessing.DateMode, input string) dataprocessing.DateBoundary {
	t.Helper()
	b, err := dataprocessing.ParseBoundary(mode, input, config.DefaultDateLayout)
	require.NoError(t, err)
	return b
}

func TestRunMonthAllLocations(t *testing.T) {
	f := newFixture(t)

	res, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeMonth, "03/2024"),
		LocationOption: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.RowsIn)
	assert.Equal(t, 3, res.RowsOut)
	assert.Equal(t, dataprocessing.AllLocations, res.Location)
	require.Len(t, res.Charts, 2)

	bar := res.Charts[0]
	assert.Equal(t, "bar", bar.Kind)
	assert.Equal(t, 3, bar.Points)
	assert.Equal(t, "1575", bar.Total)
	assert.FileExists(t, bar.Path)
	assert.Equal(t, "bar_Cliente_Venta Perdida CF.png", filepath.Base(bar.Path))
	assert.FileExists(t, bar.SeriesPath)

	pie := res.Charts[1]
	assert.Equal(t, 2, pie.Points)
	assert.Equal(t, "1575", pie.Total)
	assert.FileExists(t, res.Workbook)
	assert.FileExists(t, filepath.Join(f.paths.DataDir, "venta_perdida_normalized.csv"))

	var names []string
	for _, step := range res.Steps {
		names = append(names, step.Name)
		assert.Equal(t, StepStatusCompleted, step.Status, step.Name)
	}
	assert.Equal(t, []string{StepNormalize, StepLoad, StepFilter, StepDates, StepLocation, StepCharts, StepExport}, names)

	require.Len(t, f.store.finished, 1)
	run := f.store.finished[0]
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, storage.StatusSuccess, run.Status)
	assert.Equal(t, 2, run.DateMode)
	assert.Equal(t, 3, run.RowsOut)
	assert.Equal(t, 2, run.Charts)
	assert.NotNil(t, run.FinishedAt)

	_, ok := f.logs.Find("run finished")
	assert.True(t, ok)
}

func TestRunSingleLocation(t *testing.T) {
	f := newFixture(t)

	res, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeYear, "2024"),
		LocationOption: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "Lima", res.Location)
	assert.Equal(t, 3, res.RowsOut)
	assert.Equal(t, "1550", res.Charts[0].Total)
}

func TestRunWithoutDataLogsAndContinues(t *testing.T) {
	f := newFixture(t)

	res, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeDay, "03/03/2024"),
		LocationOption: 1,
	})
	require.NoError(t, err)

	assert.Zero(t, res.RowsOut)
	assert.Equal(t, 2, res.EmptyCharts())
	assert.Empty(t, res.Workbook)
	assert.Equal(t, StepStatusSkipped, res.Steps[len(res.Steps)-1].Status)

	record, ok := f.logs.Find("no data")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, record.Level)
	assert.Equal(t, "reports", record.Attrs["component"])

	pngs, err := filepath.Glob(filepath.Join(f.paths.OutputDir, "*.png"))
	require.NoError(t, err)
	assert.Empty(t, pngs)
	assert.Equal(t, 2, f.store.finished[0].EmptyCharts)
}

func TestClearChartsRemovesStaleCharts(t *testing.T) {
	f := newFixture(t)
	stale := testutil.WriteFile(t, f.paths.OutputDir, "bar_Viejo_CF.png", "x")
	series := testutil.WriteFile(t, f.paths.OutputDir, "series_Viejo_CF.csv", "x")

	removed, err := f.driver.ClearCharts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(series)
	assert.NoError(t, err)
}

func TestRunLeavesExistingChartsAlone(t *testing.T) {
	f := newFixture(t)
	other := testutil.WriteFile(t, f.paths.OutputDir, "bar_Otro_CF.png", "x")

	_, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeFrom, "01/04/2024"),
		LocationOption: 1,
	})
	require.NoError(t, err)

	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestRunSeveralReportsKeepsEveryChart(t *testing.T) {
	f := newFixtureWithCatalog(t, testutil.MultiReportCatalogYAML)
	ctx := context.Background()

	_, err := f.driver.ClearCharts(ctx)
	require.NoError(t, err)

	var paths []string
	for _, name := range f.driver.Catalog().Names() {
		res, err := f.driver.Run(ctx, Request{
			Report:         name,
			Boundary:       boundary(t, dataprocessing.ModeYear, "2024"),
			LocationOption: 1,
		})
		require.NoError(t, err, name)
		for _, c := range res.Charts {
			require.False(t, c.Empty, "%s %s", name, c.Kind)
			paths = append(paths, c.Path)
		}
	}

	require.Len(t, paths, 4)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
	pngs, err := filepath.Glob(filepath.Join(f.paths.OutputDir, "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 4)
}

func TestRunErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.driver.Run(context.Background(), Request{Report: "missing"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
	assert.Empty(t, f.store.created)

	res, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeYear, "2024"),
		LocationOption: 9,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataprocessing.ErrInvalidOption))
	assert.Equal(t, StepStatusFailed, res.Steps[len(res.Steps)-1].Status)

	require.Len(t, f.store.finished, 1)
	assert.Equal(t, storage.StatusFailed, f.store.finished[0].Status)
	assert.Contains(t, f.store.finished[0].Error, "invalid option 9")

	families, err := f.metrics.Gather()
	require.NoError(t, err)
	var failed float64
	for _, mf := range families {
		if mf.GetName() != "opsreports_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == "error" {
					failed += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, failed)
}

func TestRunMissingSourceFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.paths.DataDir, "venta_perdida.csv")))

	_, err := f.driver.Run(context.Background(), Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeYear, "2024"),
		LocationOption: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.driver.Run(ctx, Request{
		Report:         "venta_perdida",
		Boundary:       boundary(t, dataprocessing.ModeYear, "2024"),
		LocationOption: 1,
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, f.store.finished, 1)
	assert.Equal(t, storage.StatusFailed, f.store.finished[0].Status)
}

func TestBuild(t *testing.T) {
	table := dataprocessing.NewTable(
		[]string{"Cliente", "Motivo", "CF"},
		[][]string{
			{"A", "x", "10"},
			{"A", "y", "5"},
			{"B", "x", "7"},
			{"C", "y", "1"},
			{"D", "x", "2"},
		},
	)

	t.Run("top_n folds the tail", func(t *testing.T) {
		s, err := Build(table, config.ChartDefinition{GroupBy: []string{"Cliente"}, Indicator: "CF", TopN: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", dataprocessing.DefaultOtherLabel}, s.Labels())
		assert.Equal(t, "25", s.Total().String())
	})

	t.Run("top_n_filter keeps leading categories", func(t *testing.T) {
		s, err := Build(table, config.ChartDefinition{GroupBy: []string{"Cliente"}, Indicator: "CF", TopNFilter: 2, Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "A"}, s.Labels())
		assert.Equal(t, "22", s.Total().String())
	})

	t.Run("unknown indicator", func(t *testing.T) {
		_, err := Build(table, config.ChartDefinition{GroupBy: []string{"Cliente"}, Indicator: "Nope"})
		assert.ErrorIs(t, err, dataprocessing.ErrColumnNotFound)
	})
}

func TestStepDuration(t *testing.T) {
	step := startStep(StepLoad)
	step.StartTime = step.StartTime.Add(-time.Second)
	step.Complete(4)

	assert.Equal(t, 4, step.Rows)
	assert.GreaterOrEqual(t, step.Duration(), time.Second)
}

func TestNormalizedFileName(t *testing.T) {
	assert.Equal(t, "vp_normalized.csv", NormalizedFileName("vp.txt"))
}
