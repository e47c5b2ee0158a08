package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "opsreports/internal/errors"
)

// DateMode selects how user date text is turned into a boundary.
type DateMode int

const (
	ModeYear  DateMode = iota + 1 // whole calendar year, inclusive
	ModeMonth                     // [1st of month, 1st of next month)
	ModeDay                       // a single day
	ModeRange                     // [start, end] inclusive
	ModeFrom                      // [start, +inf)
)

var modeNames = map[DateMode]string{
	ModeYear:  "year",
	ModeMonth: "month",
	ModeDay:   "day",
	ModeRange: "range",
	ModeFrom:  "from",
}

func (m DateMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DateMode(%d)", int(m))
}

// Valid reports whether m is one of the five modes.
func (m DateMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// DateBoundary is a parsed date selection. End is unused for ModeDay and ModeFrom.
type DateBoundary struct {
	Mode  DateMode  `json:"mode"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
	Input string    `json:"input"`
}

// Contains reports whether day (already truncated to midnight UTC) falls in b.
func (b DateBoundary) Contains(day time.Time) bool {
	switch b.Mode {
	case ModeYear, ModeRange:
		return !day.Before(b.Start) && !day.After(b.End)
	case ModeMonth:
		return !day.Before(b.Start) && day.Before(b.End)
	case ModeDay:
		return day.Equal(b.Start)
	case ModeFrom:
		return !day.Before(b.Start)
	}
	return false
}

// ParseBoundary turns console or request text into a boundary for mode.
// Day-level input uses layout (day first, e.g. 02/01/2006); single-digit
// day and month are also accepted.
func ParseBoundary(mode DateMode, input, layout string) (DateBoundary, error) {
	text := strings.TrimSpace(input)
	b := DateBoundary{Mode: mode, Input: text}

	switch mode {
	case ModeYear:
		year, err := strconv.Atoi(text)
		if err != nil || year < 1 || year > 9999 {
			return b, invalidDate(text, "expected YYYY")
		}
		b.Start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		b.End = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	case ModeMonth:
		t, err := time.Parse("1/2006", text)
		if err != nil {
			return b, invalidDate(text, "expected M/YYYY")
		}
		b.Start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes month 13 to January of the next year
		b.End = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)

	case ModeDay, ModeFrom:
		day, err := parseDay(text, layout)
		if err != nil {
			return b, err
		}
		b.Start = day

	case ModeRange:
		parts := strings.Fields(text)
		if len(parts) != 2 {
			return b, invalidDate(text, "expected two dates separated by a space")
		}
		start, err := parseDay(parts[0], layout)
		if err != nil {
			return b, err
		}
		end, err := parseDay(parts[1], layout)
		if err != nil {
			return b, err
		}
		if start.After(end) {
			return b, apperrors.NewAppValidationError(
				fmt.Sprintf("range start %s is after end %s", parts[0], parts[1]), ErrInvalidDateInput)
		}
		b.Start, b.End = start, end

	default:
		return b, apperrors.NewAppValidationError(
			fmt.Sprintf("invalid date mode %d: choose 1-5", int(mode)), ErrInvalidOption)
	}

	return b, nil
}

// SelectDateRange keeps the rows whose date cell falls inside b. Cells that
// match none of layouts are dropped.
func SelectDateRange(t *Table, column string, layouts []string, b DateBoundary) (*Table, error) {
	if !b.Mode.Valid() {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("invalid date mode %d: choose 1-5", int(b.Mode)), ErrInvalidOption)
	}

	pos, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}

	return t.filterRows(func(row []Value) bool {
		day, ok := ParseCellDate(row[pos].Raw, layouts)
		return ok && b.Contains(day)
	}), nil
}

// ParseCellDate parses a date cell with the first matching layout and
// truncates it to midnight UTC.
func ParseCellDate(raw string, layouts []string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseDay(text, layout string) (time.Time, error) {
	layouts := []string{layout, "2/1/2006"}
	if layout == "" {
		layouts = layouts[1:]
	}
	day, ok := ParseCellDate(text, layouts)
	if !ok {
		return time.Time{}, invalidDate(text, "expected D/M/YYYY")
	}
	return day, nil
}

func invalidDate(input, hint string) error {
	return apperrors.NewParsingError(fmt.Sprintf("invalid date %q: %s", input, hint), ErrInvalidDateInput).
		WithContext("input", input)
}
