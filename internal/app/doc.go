// Package app assembles the reporting server: configuration, paths, the
// report catalog, the SQLite run history, the report driver, the service
// layer and the chi router with its middleware chain.
//
// Middleware order: RequestID, TraceID, RealIP, StructuredLogger, panic
// recovery. The run endpoint is additionally rate limited.
package app
