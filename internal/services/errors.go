package services

import "errors"

var (
	// ErrRunInProgress is returned when a run starts while another is active.
	// Runs share the output directory, so only one may execute at a time.
	ErrRunInProgress = errors.New("a report run is already in progress")

	// ErrHistoryDisabled is returned by history reads without a store.
	ErrHistoryDisabled = errors.New("run history is not configured")
)
