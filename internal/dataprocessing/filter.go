package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "opsreports/internal/errors"
)

// SelectColumns projects t onto names, in that order.
func SelectColumns(t *Table, names []string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}

	rows := make([][]Value, len(t.rows))
	for r, row := range t.rows {
		projected := make([]Value, len(idx))
		for i, pos := range idx {
			projected[i] = row[pos]
		}
		rows[r] = projected
	}

	columns := make([]string, len(names))
	copy(columns, names)
	return newTable(columns, rows), nil
}

// RestrictLocations keeps the rows whose column value is exactly one of allowed.
func RestrictLocations(t *Table, column string, allowed []string) (*Table, error) {
	pos, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(allowed))
	for _, loc := range allowed {
		set[loc] = struct{}{}
	}

	return t.filterRows(func(row []Value) bool {
		if row[pos].Null {
			return false
		}
		_, ok := set[row[pos].Raw]
		return ok
	}), nil
}

// NormalizeAndExcludeZero replaces every null with "0" and, when zeroColumn
// exists, drops the rows whose value in it is numerically zero. A missing
// zeroColumn is not an error.
func NormalizeAndExcludeZero(t *Table, zeroColumn string) *Table {
	rows := make([][]Value, 0, len(t.rows))
	pos, hasZero := t.index[zeroColumn]

	for _, row := range t.rows {
		filled, copied := row, false
		for i, v := range row {
			if !v.Null {
				continue
			}
			if !copied {
				filled = make([]Value, len(row))
				copy(filled, row)
				copied = true
			}
			filled[i] = Value{Raw: "0"}
		}

		if hasZero {
			if n, err := ParseNumber(filled[pos].Raw); err == nil && n.IsZero() {
				continue
			}
		}
		rows = append(rows, filled)
	}

	return newTable(t.columns, rows)
}

// Filter is the standard row/column cleanup applied to every export.
type Filter struct {
	Columns        []string
	LocationColumn string
	Locations      []string
	ZeroColumn     string
}

// Apply projects, restricts to the configured locations (skipped when none
// are configured), fills nulls and drops zero rows. Apply is idempotent.
func (f Filter) Apply(t *Table) (*Table, error) {
	out := t
	var err error

	if len(f.Columns) > 0 {
		if out, err = SelectColumns(out, f.Columns); err != nil {
			return nil, err
		}
	}

	if len(f.Locations) > 0 {
		if out, err = RestrictLocations(out, f.LocationColumn, f.Locations); err != nil {
			return nil, err
		}
	}

	return NormalizeAndExcludeZero(out, f.ZeroColumn), nil
}

// ParseNumber parses an indicator cell. Surrounding whitespace, a leading
// sign and space thousands separators are accepted.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	return decimal.NewFromString(s)
}

func numberError(row int, column, raw string, err error) error {
	return apperrors.NewParsingError(fmt.Sprintf("non-numeric value %q in column %q at row %d", raw, column, row+1), err).
		WithContext("column", column).
		WithContext("row", row+1)
}
