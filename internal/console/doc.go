// Package console asks the operator for a date range and a location on an
// interactive terminal.
package console
