package dataprocessing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SortOrder is the direction a Series is sorted by value.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// DefaultOtherLabel names the bucket TopN folds the tail into.
const DefaultOtherLabel = "Otros"

// labelSeparator joins multi-column group labels.
const labelSeparator = " / "

// SeriesPoint is one category and its summed indicator.
type SeriesPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Series is an ordered aggregation result with unique labels.
type Series struct {
	GroupBy   []string      `json:"group_by"`
	Indicator string        `json:"indicator"`
	Points    []SeriesPoint `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Total returns the exact sum of every point.
func (s Series) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Points {
		total = total.Add(p.Value)
	}
	return total
}

// Labels returns the point labels in order.
func (s Series) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

// Floats returns the point values as float64 for plotting.
func (s Series) Floats() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value.InexactFloat64()
	}
	return values
}

// GroupName is the group-by columns joined for titles and file names.
func (s Series) GroupName() string {
	return strings.Join(s.GroupBy, "_")
}

// TopN keeps the first n points and folds the rest into a single otherLabel
// point. n <= 0, or a series already within n points, is returned unchanged.
func (s Series) TopN(n int, otherLabel string) Series {
	out := s
	out.Points = slices.Clone(s.Points)
	if n <= 0 || len(s.Points) <= n {
		return out
	}
	if otherLabel == "" {
		otherLabel = DefaultOtherLabel
	}

	rest := Series{Points: s.Points[n:]}
	out.Points = append(out.Points[:n:n], SeriesPoint{Label: otherLabel, Value: rest.Total()})
	return out
}

// TopLabels returns the labels of the first n points.
func (s Series) TopLabels(n int) []string {
	if n <= 0 || n > len(s.Points) {
		n = len(s.Points)
	}
	return s.Labels()[:n]
}

// Reversed returns the series with point order reversed.
func (s Series) Reversed() Series {
	out := s
	out.Points = slices.Clone(s.Points)
	slices.Reverse(out.Points)
	return out
}

// Aggregate groups t by groupBy, sums indicator exactly and sorts the result
// by value in order. Rows with an empty category are skipped; ties keep the
// order in which categories first appear.
func Aggregate(t *Table, groupBy []string, indicator string, order SortOrder) (Series, error) {
	series := Series{GroupBy: slices.Clone(groupBy), Indicator: indicator}

	groupIdx := make([]int, len(groupBy))
	for i, column := range groupBy {
		pos, err := t.ColumnIndex(column)
		if err != nil {
			return series, err
		}
		groupIdx[i] = pos
	}
	valueIdx, err := t.ColumnIndex(indicator)
	if err != nil {
		return series, err
	}

	sums := make(map[string]int)
	parts := make([]string, len(groupIdx))

rows:
	for r, row := range t.rows {
		for i, pos := range groupIdx {
			cell := row[pos]
			if cell.Null || strings.TrimSpace(cell.Raw) == "" {
				continue rows
			}
			parts[i] = cell.Raw
		}

		raw := row[valueIdx]
		value := decimal.Zero
		if !raw.Null {
			v, err := ParseNumber(raw.Raw)
			if err != nil {
				return series, numberError(r, indicator, raw.Raw, err)
			}
			value = v
		}

		label := strings.Join(parts, labelSeparator)
		if i, ok := sums[label]; ok {
			series.Points[i].Value = series.Points[i].Value.Add(value)
			continue
		}
		sums[label] = len(series.Points)
		series.Points = append(series.Points, SeriesPoint{Label: label, Value: value})
	}

	slices.SortStableFunc(series.Points, func(a, b SeriesPoint) int {
		if order == Ascending {
			return a.Value.Cmp(b.Value)
		}
		return b.Value.Cmp(a.Value)
	})

	return series, nil
}

// FilterLabels keeps the rows whose column value is one of labels.
func FilterLabels(t *Table, column string, labels []string) (*Table, error) {
	return RestrictLocations(t, column, labels)
}
