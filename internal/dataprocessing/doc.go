// Package dataprocessing turns raw sales-operations exports into chartable series.
//
// # Pipeline
//
// A run moves a Table through these stages, each returning a new Table:
//
//	NormalizeSymbols → LoadFile → Filter.Apply → SelectDateRange → SelectLocation → Aggregate
//
// NormalizeSymbols rewrites semicolon exports so commas inside values become
// spaces and semicolons become field separators. Filter.Apply projects the
// relevant columns, restricts rows to the operated locations, fills nulls
// with "0" and drops rows whose lost-sales value is zero.
//
// # Dates
//
// ParseBoundary converts user text into a DateBoundary for one of five
// modes (year, month, day, range, from). Reading that text from a terminal
// is the console package's job; nothing here prompts.
//
// # Aggregation
//
// Aggregate sums the indicator per category with exact decimal arithmetic.
// Series.TopN folds the tail into an "Otros" bucket.
//
// # Errors
//
// Failures are *errors.AppError values wrapping ErrColumnNotFound,
// ErrInvalidOption or ErrInvalidDateInput; match them with errors.Is.
package dataprocessing
