package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"opsreports/internal/dataprocessing"
)

func motivoSeries() dataprocessing.Series {
	return dataprocessing.Series{
		GroupBy:   []string{"Motivo"},
		Indicator: "Venta Perdida CF",
		Points: []dataprocessing.SeriesPoint{
			{Label: "Cerrado", Value: decimal.RequireFromString("75")},
			{Label: "Sin dinero", Value: decimal.RequireFromString("25")},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "BOM prefix")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSeries(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	path, err := w.WriteSeries(motivoSeries())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "series_Motivo_Venta Perdida CF.csv"), path)

	assert.Equal(t, [][]string{
		{"Motivo", "Venta Perdida CF", "Porcentaje"},
		{"Cerrado", "75.00", "75.00"},
		{"Sin dinero", "25.00", "25.00"},
	}, readCSV(t, path))
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	require.NoError(t, w.WriteCSV("runs.csv", WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}},
		BOMPrefix: true,
	}))
	require.NoError(t, w.WriteCSV("runs.csv", WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, readCSV(t, filepath.Join(dir, "runs.csv")))
}

func TestSeriesRecordsZeroTotal(t *testing.T) {
	s := dataprocessing.Series{
		GroupBy:   []string{"k"},
		Indicator: "v",
		Points:    []dataprocessing.SeriesPoint{{Label: "a", Value: decimal.Zero}},
	}
	assert.Equal(t, [][]string{{"a", "0.00", "0.00"}}, SeriesRecords(s))
}

func TestWorkbookWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(dir, nil)

	other := motivoSeries()
	other.GroupBy = []string{"Cliente"}
	empty := dataprocessing.Series{GroupBy: []string{"Ruta"}, Indicator: "Venta Perdida CF"}

	path, err := w.Write("ventas", []dataprocessing.Series{motivoSeries(), other, motivoSeries(), empty})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary_ventas.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 4)
	for _, name := range sheets {
		assert.LessOrEqual(t, len([]rune(name)), 31)
	}

	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, []string{"Motivo", "Venta Perdida CF", "Porcentaje"}, rows[0])
	assert.Equal(t, "Cerrado", rows[1][0])
	assert.Equal(t, "Total", rows[3][0])

	formula, err := f.GetCellFormula(sheets[0], "B4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B2:B3)", formula)

	_, err = w.Write("nada", nil)
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a-b(c)", sheetName("a/b[c]?"))
	assert.Len(t, []rune(sheetName("Código Transportista_Venta Perdida CF")), 31)
}
