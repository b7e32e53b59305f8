// Package config provides configuration management for folio.
// Settings come from built-in defaults, an optional YAML file and
// environment variables with the FOLIO_ prefix, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) by Validate when a setting is out of range.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds all configuration settings for folio.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Source  SourceConfig  `yaml:"source"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host         string  `yaml:"host"`          // default: 127.0.0.1
	Port         int     `yaml:"port"`          // default: 6464
	APIToken     string  `yaml:"api_token"`     // bearer token, required in production
	SecurityMode string  `yaml:"security_mode"` // development, production (default: development)
	RateLimit    float64 `yaml:"rate_limit"`    // requests per second (default: 10)
	Burst        int     `yaml:"burst"`         // default: 20
}

// StorageConfig selects where validation reports are kept.
type StorageConfig struct {
	Engine      string `yaml:"engine"`       // sqlite, postgres (default: sqlite)
	DataPath    string `yaml:"data_path"`    // directory for the sqlite file (default: ./data)
	PostgresDSN string `yaml:"postgres_dsn"` // required when Engine is postgres
}

// SourceConfig selects where the snapshot is loaded from.
type SourceConfig struct {
	Driver string `yaml:"driver"` // file, s3, http (default: file)
	Path   string `yaml:"path"`   // file driver (default: ./data/data.json)

	S3Bucket    string `yaml:"s3_bucket"`
	S3Key       string `yaml:"s3_key"` // default: data.json
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"` // MinIO and other S3-compatible stores
	S3PathStyle bool   `yaml:"s3_path_style"`

	HTTPURL        string        `yaml:"http_url"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`     // default: 10s
	HTTPRatePerSec float64       `yaml:"http_rate_per_sec"` // default: 1
}

// ArchiveConfig controls where snapshot artifacts are written and how many
// timestamped copies are kept per retention tier.
type ArchiveConfig struct {
	Dir     string `yaml:"dir"`     // default: ./public
	Hourly  int    `yaml:"hourly"`  // default: 24
	Daily   int    `yaml:"daily"`   // default: 7
	Weekly  int    `yaml:"weekly"`  // default: 4
	Monthly int    `yaml:"monthly"` // default: 12
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: info
	Format string `yaml:"format"` // text, json (default: text)
}

// Load builds the configuration. If path is empty, FOLIO_CONFIG is
// consulted; a missing path means defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FOLIO_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         6464,
			SecurityMode: "development",
			RateLimit:    10,
			Burst:        20,
		},
		Storage: StorageConfig{
			Engine:   "sqlite",
			DataPath: "./data",
		},
		Source: SourceConfig{
			Driver:         "file",
			Path:           "./data/data.json",
			S3Key:          "data.json",
			HTTPTimeout:    10 * time.Second,
			HTTPRatePerSec: 1,
		},
		Archive: ArchiveConfig{
			Dir:     "./public",
			Hourly:  24,
			Daily:   7,
			Weekly:  4,
			Monthly: 12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyEnv overrides cfg with any FOLIO_* variables that are set. The
// current value of each field is its default.
func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("FOLIO_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("FOLIO_PORT", cfg.Server.Port)
	cfg.Server.APIToken = getEnv("FOLIO_API_TOKEN", cfg.Server.APIToken)
	cfg.Server.SecurityMode = getEnv("FOLIO_SECURITY_MODE", cfg.Server.SecurityMode)
	cfg.Server.RateLimit = getEnvFloat("FOLIO_RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Server.Burst = getEnvInt("FOLIO_RATE_BURST", cfg.Server.Burst)

	cfg.Storage.Engine = getEnv("FOLIO_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DataPath = getEnv("FOLIO_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresDSN = getEnv("FOLIO_POSTGRES_DSN", cfg.Storage.PostgresDSN)

	cfg.Source.Driver = getEnv("FOLIO_SOURCE", cfg.Source.Driver)
	cfg.Source.Path = getEnv("FOLIO_SOURCE_PATH", cfg.Source.Path)
	cfg.Source.S3Bucket = getEnv("FOLIO_S3_BUCKET", cfg.Source.S3Bucket)
	cfg.Source.S3Key = getEnv("FOLIO_S3_KEY", cfg.Source.S3Key)
	cfg.Source.S3Region = getEnv("FOLIO_S3_REGION", cfg.Source.S3Region)
	cfg.Source.S3Endpoint = getEnv("FOLIO_S3_ENDPOINT", cfg.Source.S3Endpoint)
	cfg.Source.S3PathStyle = getEnvBool("FOLIO_S3_PATH_STYLE", cfg.Source.S3PathStyle)
	cfg.Source.HTTPURL = getEnv("FOLIO_HTTP_URL", cfg.Source.HTTPURL)
	cfg.Source.HTTPTimeout = getEnvDuration("FOLIO_HTTP_TIMEOUT", cfg.Source.HTTPTimeout)
	cfg.Source.HTTPRatePerSec = getEnvFloat("FOLIO_HTTP_RATE", cfg.Source.HTTPRatePerSec)

	cfg.Archive.Dir = getEnv("FOLIO_ARCHIVE_DIR", cfg.Archive.Dir)
	cfg.Archive.Hourly = getEnvInt("FOLIO_ARCHIVE_HOURLY", cfg.Archive.Hourly)
	cfg.Archive.Daily = getEnvInt("FOLIO_ARCHIVE_DAILY", cfg.Archive.Daily)
	cfg.Archive.Weekly = getEnvInt("FOLIO_ARCHIVE_WEEKLY", cfg.Archive.Weekly)
	cfg.Archive.Monthly = getEnvInt("FOLIO_ARCHIVE_MONTHLY", cfg.Archive.Monthly)

	cfg.Log.Level = getEnv("FOLIO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("FOLIO_LOG_FORMAT", cfg.Log.Format)
}

// Validate reports the first setting that cannot work. The returned error
// wraps ErrInvalid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalid, c.Server.Port)
	}
	switch c.Server.SecurityMode {
	case "development":
	case "production":
		if c.Server.APIToken == "" {
			return fmt.Errorf("%w: production mode requires an API token", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown security mode %q", ErrInvalid, c.Server.SecurityMode)
	}

	switch c.Storage.Engine {
	case "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres engine requires a DSN", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage engine %q", ErrInvalid, c.Storage.Engine)
	}

	switch c.Source.Driver {
	case "file":
		if c.Source.Path == "" {
			return fmt.Errorf("%w: file source requires a path", ErrInvalid)
		}
	case "s3":
		if c.Source.S3Bucket == "" || c.Source.S3Key == "" {
			return fmt.Errorf("%w: s3 source requires bucket and key", ErrInvalid)
		}
	case "http":
		if c.Source.HTTPURL == "" {
			return fmt.Errorf("%w: http source requires a URL", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source driver %q", ErrInvalid, c.Source.Driver)
	}

	if c.Archive.Hourly < 0 || c.Archive.Daily < 0 || c.Archive.Weekly < 0 || c.Archive.Monthly < 0 {
		return fmt.Errorf("%w: archive retention counts must not be negative", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// IsProduction reports whether API authentication is enforced.
func (c *Config) IsProduction() bool {
	return c.Server.SecurityMode == "production"
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false (case-insensitive).
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
