// Package exporter writes report artifacts other than charts.
//
// CSVWriter writes UTF-8 (BOM-prefixed) CSV files into the output directory,
// including one series_{group_by}_{indicator}.csv per aggregated chart.
// WorkbookWriter collects every series of a run into summary_{report}.xlsx,
// one sheet per chart.
package exporter
