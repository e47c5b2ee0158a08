package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"opsreports/internal/dataprocessing"
)

// WorkbookWriter writes every chart series of a run into one xlsx file.
type WorkbookWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewWorkbookWriter creates a workbook writer rooted at outputDir
func NewWorkbookWriter(outputDir string, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{outputDir: outputDir, logger: logger}
}

// WorkbookFileName returns summary_{report}.xlsx
func WorkbookFileName(report string) string {
	return sanitizeName(fmt.Sprintf("summary_%s.xlsx", report))
}

// Write saves one sheet per series, named after its group-by columns, and
// returns the written path. Series with no points still get a header row.
func (w *WorkbookWriter) Write(report string, series []dataprocessing.Series) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no series to write for report %s", report)
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return "", fmt.Errorf("failed to create number style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]int)

	for i, s := range series {
		name := sheetName(s.GroupName() + "_" + s.Indicator)
		if n := used[name]; n > 0 {
			used[name]++
			base := []rune(name)
			name = fmt.Sprintf("%s_%d", string(base[:min(len(base), 28)]), n+1)
		}
		used[name]++

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return "", fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		if err := writeSeriesSheet(f, name, s, header, number); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(w.outputDir, WorkbookFileName(report))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(series)))
	return path, nil
}

func writeSeriesSheet(f *excelize.File, sheet string, s dataprocessing.Series, headerStyle, numberStyle int) error {
	headers := SeriesHeaders(s)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	total := s.Total()
	for i, p := range s.Points {
		row := i + 2
		share := 0.0
		if !total.IsZero() {
			share = p.Value.Div(total).Shift(2).Round(2).InexactFloat64()
		}
		values := []any{p.Label, p.Value.InexactFloat64(), share}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if s.Len() > 0 {
		last := fmt.Sprintf("C%d", s.Len()+1)
		if err := f.SetCellStyle(sheet, "B2", last, numberStyle); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}

	totalRow := s.Len() + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return err
	}
	if s.Len() == 0 {
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), 0); err != nil {
			return err
		}
	} else if err := f.SetCellFormula(sheet, fmt.Sprintf("B%d", totalRow), fmt.Sprintf("SUM(B2:B%d)", totalRow-1)); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 32)
}
