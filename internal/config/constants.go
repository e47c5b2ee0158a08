package config

import "time"

// Application constants
const (
	AppName    = "opsreports"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (OPSREPORTS_LOGGING_LEVEL, ...)
	EnvPrefix = "OPSREPORTS"

	// Column names used by the lost-sales exports
	DefaultLocationColumn = "Locación"
	DefaultZeroColumn     = "Venta Perdida CF"

	// Day-first layout used by every console prompt and most exports
	DefaultDateLayout = "02/01/2006"

	DefaultSeparator   = ","
	DefaultCatalogFile = "reports.yaml"

	// File Paths (relative to the base directory)
	DefaultDataDir   = "data"
	DefaultOutputDir = "data/output"
	DefaultLogsDir   = "logs"
	DefaultDBFile    = "data/opsreports.db"

	// Browser automation
	DefaultWhatsAppURL    = "https://web.whatsapp.com"
	DefaultLoadTimeout    = 15 * time.Second
	DefaultRenderWait     = 10 * time.Second
	DefaultStepWait       = 3 * time.Second
	DefaultElementTimeout = 10 * time.Second

	// Server
	DefaultPort            = 8090
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRunRate         = 1.0
	DefaultRunBurst        = 3
)
