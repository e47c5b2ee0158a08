package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"opsreports/internal/dataprocessing"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at outputDir
func NewCSVWriter(outputDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outputDir: outputDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SeriesFileName returns series_{group_by}_{indicator}.csv
func SeriesFileName(series dataprocessing.Series) string {
	return sanitizeName(fmt.Sprintf("series_%s_%s.csv", series.GroupName(), series.Indicator))
}

// WriteSeries writes one aggregated series with a share-of-total column and
// returns the written path.
func (w *CSVWriter) WriteSeries(series dataprocessing.Series) (string, error) {
	name := SeriesFileName(series)
	err := w.WriteCSV(name, WriteOptions{
		Headers:   SeriesHeaders(series),
		Records:   SeriesRecords(series),
		BOMPrefix: true,
	})
	if err != nil {
		return "", err
	}
	return w.resolvePath(name), nil
}

// SeriesHeaders returns the label, indicator and share column names.
func SeriesHeaders(series dataprocessing.Series) []string {
	label := series.GroupName()
	if label == "" {
		label = "Label"
	}
	return []string{label, series.Indicator, "Porcentaje"}
}

// SeriesRecords renders each point as label, value, percent of total.
func SeriesRecords(series dataprocessing.Series) [][]string {
	total := series.Total()
	records := make([][]string, 0, series.Len())
	for _, p := range series.Points {
		share := "0.00"
		if !total.IsZero() {
			share = formatDecimal(p.Value.Div(total).Shift(2))
		}
		records = append(records, []string{p.Label, formatDecimal(p.Value), share})
	}
	return records
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.outputDir, filePath)
}
