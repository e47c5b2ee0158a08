package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Chart kinds understood by the renderers
const (
	ChartBar      = "bar"
	ChartBarH     = "barh"
	ChartPie      = "pie"
	ChartDonut    = "donut"
	ChartPareto   = "pareto"
	ChartLollipop = "lollipop"
)

// Catalog is the set of report definitions read from reports.yaml
type Catalog struct {
	Locations []string           `yaml:"locations" json:"locations"`
	Reports   []ReportDefinition `yaml:"reports" json:"reports" validate:"required,min=1,dive"`
}

// ReportDefinition describes one export and the charts built from it.
type ReportDefinition struct {
	Name            string            `yaml:"name" json:"name" validate:"required"`
	FileName        string            `yaml:"file_name" json:"file_name" validate:"required"`
	Separator       string            `yaml:"separator" json:"separator" validate:"omitempty,len=1"`
	Normalize       bool              `yaml:"normalize" json:"normalize"`
	Sheet           string            `yaml:"sheet" json:"sheet,omitempty"`
	RelevantColumns []string          `yaml:"relevant_columns" json:"relevant_columns" validate:"required,min=1,dive,required"`
	DateColumn      string            `yaml:"date_column" json:"date_column" validate:"required"`
	DateLayouts     []string          `yaml:"date_layouts" json:"date_layouts"`
	Charts          []ChartDefinition `yaml:"charts" json:"charts" validate:"required,min=1,dive"`
}

// ChartDefinition describes a single group-by/indicator chart
type ChartDefinition struct {
	GroupBy    []string   `yaml:"group_by" json:"group_by" validate:"required,min=1,dive,required"`
	Indicator  string     `yaml:"indicator" json:"indicator" validate:"required"`
	Kind       string     `yaml:"kind" json:"kind" validate:"required,oneof=bar barh pie donut pareto lollipop"`
	Ascending  bool       `yaml:"ascending" json:"ascending"`
	TopN       int        `yaml:"top_n" json:"top_n" validate:"gte=0"`
	TopNFilter int        `yaml:"top_n_filter" json:"top_n_filter" validate:"gte=0"`
	OtherLabel string     `yaml:"other_label" json:"other_label,omitempty"`
	Style      ChartStyle `yaml:"style" json:"style"`
}

// ChartStyle overrides the renderer defaults for one chart
type ChartStyle struct {
	Width     float64  `yaml:"width" json:"width,omitempty" validate:"gte=0"`
	Height    float64  `yaml:"height" json:"height,omitempty" validate:"gte=0"`
	DPI       int      `yaml:"dpi" json:"dpi,omitempty" validate:"gte=0"`
	FontSize  float64  `yaml:"font_size" json:"font_size,omitempty" validate:"gte=0"`
	LabelSize float64  `yaml:"label_size" json:"label_size,omitempty" validate:"gte=0"`
	Colors    []string `yaml:"colors" json:"colors,omitempty" validate:"dive,hexcolor"`
}

// SeparatorRune returns the field separator, "," when unset.
func (r ReportDefinition) SeparatorRune() rune {
	if r.Separator == "" {
		return []rune(DefaultSeparator)[0]
	}
	return []rune(r.Separator)[0]
}

// Layouts returns the date layouts used to parse the date column.
func (r ReportDefinition) Layouts() []string {
	if len(r.DateLayouts) == 0 {
		return []string{DefaultDateLayout}
	}
	return r.DateLayouts
}

// LoadCatalog reads and validates a report catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report catalog: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML report catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse report catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Validate checks struct tags and that every referenced column is projected.
func (c *Catalog) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid report catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Reports))
	for _, report := range c.Reports {
		if seen[report.Name] {
			return fmt.Errorf("invalid report catalog: duplicate report %q", report.Name)
		}
		seen[report.Name] = true

		if !slices.Contains(report.RelevantColumns, report.DateColumn) {
			return fmt.Errorf("invalid report %q: date column %q is not in relevant_columns", report.Name, report.DateColumn)
		}
		for _, chart := range report.Charts {
			referenced := append([]string{chart.Indicator}, chart.GroupBy...)
			for _, column := range referenced {
				if !slices.Contains(report.RelevantColumns, column) {
					return fmt.Errorf("invalid report %q: column %q is not in relevant_columns", report.Name, column)
				}
			}
			if chart.TopNFilter > 0 && len(chart.GroupBy) != 1 {
				return fmt.Errorf("invalid report %q: top_n_filter needs exactly one group_by column", report.Name)
			}
		}
	}

	return nil
}

// Report returns the definition with the given name
func (c *Catalog) Report(name string) (ReportDefinition, bool) {
	for _, report := range c.Reports {
		if report.Name == name {
			return report, true
		}
	}
	return ReportDefinition{}, false
}

// Names returns report names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Reports))
	for _, report := range c.Reports {
		names = append(names, report.Name)
	}
	return names
}
