// Package config loads opsreports configuration and the report catalog.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then a .env file, then OPSREPORTS_* environment variables. The report
// catalog (reports.yaml) declares every export the pipeline knows about and
// the charts generated from it.
//
// Example environment overrides:
//
//	OPSREPORTS_SERVER_PORT=9090
//	OPSREPORTS_LOGGING_LEVEL=debug
//	OPSREPORTS_MESSENGER_HEADLESS=true
package config
