// Package reports runs configured report definitions end to end: load the
// export, filter it, slice it by date and location, then aggregate and
// render every chart the definition lists.
//
// A run is tracked as a sequence of steps (normalize, load, filter, dates,
// location, charts, export) whose timings come back in the Result and whose
// outcome is recorded in the run history when a store is attached.
package reports
