// Package middleware holds the HTTP middleware of the reporting server:
// trace ids, request logging with metrics, rate limiting and JSON request
// validation.
package middleware
