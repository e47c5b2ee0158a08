package dataprocessing

import (
	"errors"
	"fmt"
	"slices"

	apperrors "opsreports/internal/errors"
)

var (
	// ErrColumnNotFound is returned when a configured column is absent from a table.
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidOption is returned for out-of-range menu selections.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidDateInput is returned for date text that does not match the expected format.
	ErrInvalidDateInput = errors.New("invalid date input")
)

// Value is a single cell. Empty cells load as null.
type Value struct {
	Raw  string
	Null bool
}

// String returns the raw text, empty for null.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	return v.Raw
}

// NewValue builds a cell from its raw text.
func NewValue(raw string) Value {
	return Value{Raw: raw, Null: raw == ""}
}

// Table is an in-memory, column-named dataset. Operations never mutate the
// receiver; they return a new Table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a table from a header and raw string records. Short
// records are padded with nulls and long ones truncated to the header width.
func NewTable(columns []string, records [][]string) *Table {
	rows := make([][]Value, 0, len(records))
	for _, record := range records {
		row := make([]Value, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = NewValue(record[i])
			} else {
				row[i] = Value{Null: true}
			}
		}
		rows = append(rows, row)
	}
	return newTable(slices.Clone(columns), rows)
}

func newTable(columns []string, rows [][]Value) *Table {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column or a not-found error.
func (t *Table) ColumnIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, columnNotFound(name)
	}
	return i, nil
}

// Value returns the cell at row, column.
func (t *Table) Value(row int, column string) (Value, error) {
	i, err := t.ColumnIndex(column)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= len(t.rows) {
		return Value{}, fmt.Errorf("row %d out of range [0,%d)", row, len(t.rows))
	}
	return t.rows[row][i], nil
}

// Column returns every cell of one column.
func (t *Table) Column(name string) ([]Value, error) {
	i, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Records returns the rows as raw strings, nulls as "".
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for r, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = v.String()
		}
		out[r] = record
	}
	return out
}

// filterRows keeps rows for which keep returns true. Rows are shared, not copied;
// callers never write to them.
func (t *Table) filterRows(keep func(row []Value) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return newTable(t.columns, rows)
}

func columnNotFound(name string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("column %q", name), ErrColumnNotFound).
		WithContext("column", name)
}
