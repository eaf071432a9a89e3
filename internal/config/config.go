// =============================================================================
// Inventario - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, each overriding the previous one:
//   1. Built-in defaults
//   2. The YAML config file (config.yaml by default, optional)
//   3. Environment variables (a .env file in the working directory is loaded
//      first when present)
//
// CONFIGURATION SECTIONS:
//   client : where the backend lives and how to talk to it
//   form   : autocomplete thresholds per transaction mode
//   log    : zap logger settings
//   server : companion backend (inventario serve)
//   files  : import and export locations for the batch commands
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete application configuration.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Form   FormConfig   `yaml:"form"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Files  FilesConfig  `yaml:"files"`
}

// ClientConfig controls the HTTP client used by the form.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	// Env: INVENTARIO_BASE_URL
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every request. Zero means no timeout, which is the
	// historical behaviour of the entry form.
	Timeout time.Duration `yaml:"timeout"`
}

// FormConfig holds per-mode form settings.
type FormConfig struct {
	// PurchaseMinQuery is the shortest name that triggers a product search
	// in purchase mode. Default: 5
	PurchaseMinQuery int `yaml:"purchase_min_query"`

	// SaleMinQuery is the same threshold for sale mode. Sales search earlier
	// because the product almost always exists. Default: 3
	SaleMinQuery int `yaml:"sale_min_query"`
}

// LogConfig holds the zap logger settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Env: INVENTARIO_LOG_LEVEL
	Level string `yaml:"level"`

	// Encoding is "console" or "json".
	Encoding string `yaml:"encoding"`

	// File receives log output. Empty means stderr. The interactive form
	// always needs a file so log lines do not corrupt the screen.
	File string `yaml:"file"`
}

// ServerConfig holds the companion backend settings.
type ServerConfig struct {
	// ListenAddr is the HTTP listen address. Env: INVENTARIO_LISTEN_ADDR
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the SQLite database file. Env: INVENTARIO_DB_PATH
	DBPath string `yaml:"db_path"`
}

// FilesConfig holds the import and export settings.
type FilesConfig struct {
	// OutputDir receives exported tables and import error reports.
	// Default: "./exports"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives imported spreadsheets once they are registered.
	// Empty leaves imported files in place.
	ArchiveDir string `yaml:"archive_dir"`

	// UseTimestampSubdirs files archived imports under YYYY/MM/DD.
	UseTimestampSubdirs bool `yaml:"use_timestamp_subdirs"`

	// CSVDelimiter is used when importing CSV files: ",", ";", "|", "tab".
	CSVDelimiter string `yaml:"csv_delimiter"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file and the environment.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file is not an error;
//     defaults and environment variables still apply.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file exists but cannot be read or parsed, or if the
//     resulting configuration is invalid.
func Load(configPath string) (*Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration made only of built-in defaults.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:8000"
	}
	if cfg.Form.PurchaseMinQuery == 0 {
		cfg.Form.PurchaseMinQuery = 5
	}
	if cfg.Form.SaleMinQuery == 0 {
		cfg.Form.SaleMinQuery = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "console"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = "./data/inventario.db"
	}
	if cfg.Files.OutputDir == "" {
		cfg.Files.OutputDir = "./exports"
	}
	if cfg.Files.CSVDelimiter == "" {
		cfg.Files.CSVDelimiter = ","
	}
}

// applyEnv overrides settings from environment variables.
func applyEnv(cfg *Config) {
	cfg.Client.BaseURL = getEnv("INVENTARIO_BASE_URL", cfg.Client.BaseURL)
	cfg.Log.Level = getEnv("INVENTARIO_LOG_LEVEL", cfg.Log.Level)
	cfg.Server.ListenAddr = getEnv("INVENTARIO_LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.DBPath = getEnv("INVENTARIO_DB_PATH", cfg.Server.DBPath)
	cfg.Form.PurchaseMinQuery = getEnvInt("INVENTARIO_PURCHASE_MIN_QUERY", cfg.Form.PurchaseMinQuery)
	cfg.Form.SaleMinQuery = getEnvInt("INVENTARIO_SALE_MIN_QUERY", cfg.Form.SaleMinQuery)
}

// validate checks values that would make the application misbehave.
func validate(cfg *Config) error {
	if cfg.Form.PurchaseMinQuery < 0 || cfg.Form.SaleMinQuery < 0 {
		return fmt.Errorf("form thresholds must not be negative")
	}
	if cfg.Client.Timeout < 0 {
		return fmt.Errorf("client timeout must not be negative")
	}
	switch cfg.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("log encoding must be console or json, got %q", cfg.Log.Encoding)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
