// Package services sits between the HTTP handlers (and CLIs) and the report
// pipeline. ReportService parses run parameters, serializes runs and reads
// history; HealthService answers liveness and readiness probes.
package services
