// Package http implements the HTTP handlers of the reporting server. Handlers
// only parse requests, call the service layer and render JSON; failures go
// through the shared RFC 7807 error handler.
//
// Routes mounted by internal/app:
//
//	GET  /api/health            liveness
//	GET  /api/health/ready      readiness
//	GET  /api/reports           configured reports
//	POST /api/reports/{name}/runs
//	GET  /api/runs              run history
//	GET  /api/runs/{id}
//	GET  /api/charts            chart images in the output directory
package http
