package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Messenger MessengerConfig `yaml:"messenger" envconfig:"MESSENGER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	DBFile      string `yaml:"db_file" envconfig:"DB_FILE"`
	CatalogFile string `yaml:"catalog_file" envconfig:"CATALOG_FILE"`
}

// PipelineConfig holds the dataset conventions shared by every report
type PipelineConfig struct {
	LocationColumn string   `yaml:"location_column" envconfig:"LOCATION_COLUMN"`
	ZeroColumn     string   `yaml:"zero_column" envconfig:"ZERO_COLUMN"`
	Locations      []string `yaml:"locations" envconfig:"LOCATIONS"`
	PromptLayout   string   `yaml:"prompt_layout" envconfig:"PROMPT_LAYOUT"`
	Unit           string   `yaml:"unit" envconfig:"UNIT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RunRate         float64       `yaml:"run_rate" envconfig:"RUN_RATE"`
	RunBurst        int           `yaml:"run_burst" envconfig:"RUN_BURST"`
}

// MessengerConfig drives the WhatsApp Web sender
type MessengerConfig struct {
	PageURL        string        `yaml:"page_url" envconfig:"PAGE_URL"`
	Groups         []string      `yaml:"groups" envconfig:"GROUPS"`
	UserDataDir    string        `yaml:"user_data_dir" envconfig:"USER_DATA_DIR"`
	Headless       bool          `yaml:"headless" envconfig:"HEADLESS"`
	LoadTimeout    time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT"`
	RenderWait     time.Duration `yaml:"render_wait" envconfig:"RENDER_WAIT"`
	StepWait       time.Duration `yaml:"step_wait" envconfig:"STEP_WAIT"`
	ElementTimeout time.Duration `yaml:"element_timeout" envconfig:"ELEMENT_TIMEOUT"`
}

// Load loads configuration from defaults, the YAML config file, a .env file
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// No default tags: fields without an env var keep the file/default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RunRate <= 0 {
		return fmt.Errorf("server run rate must be positive")
	}
	if c.Pipeline.LocationColumn == "" {
		return fmt.Errorf("pipeline location column must be set")
	}
	if c.Pipeline.PromptLayout == "" {
		c.Pipeline.PromptLayout = DefaultDateLayout
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q: use console, file or both", c.Logging.Output)
	}

	switch c.Logging.Format {
	case "json", "text":
	case "":
		c.Logging.Format = "json"
	default:
		return fmt.Errorf("invalid logging format %q: use json or text", c.Logging.Format)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/opsreports.log",
		},
		Paths: PathsConfig{
			DataDir:     DefaultDataDir,
			OutputDir:   DefaultOutputDir,
			LogsDir:     DefaultLogsDir,
			DBFile:      DefaultDBFile,
			CatalogFile: DefaultCatalogFile,
		},
		Pipeline: PipelineConfig{
			LocationColumn: DefaultLocationColumn,
			ZeroColumn:     DefaultZeroColumn,
			PromptLayout:   DefaultDateLayout,
			Unit:           "CF",
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: DefaultShutdownTimeout,
			RunRate:         DefaultRunRate,
			RunBurst:        DefaultRunBurst,
		},
		Messenger: MessengerConfig{
			PageURL:        DefaultWhatsAppURL,
			LoadTimeout:    DefaultLoadTimeout,
			RenderWait:     DefaultRenderWait,
			StepWait:       DefaultStepWait,
			ElementTimeout: DefaultElementTimeout,
		},
	}
}
