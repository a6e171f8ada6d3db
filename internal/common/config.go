package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/docmeta/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Extract  ExtractConfig  `yaml:"extract"`
	Watch    WatchConfig    `yaml:"watch"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds database-related configuration.
// Path is the SQLite file; DSN, when set to a postgres:// URL, takes precedence.
type DatabaseConfig struct {
	Path            string        `yaml:"path"`
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// ExtractConfig holds extraction-related configuration
type ExtractConfig struct {
	PreviewChars int `yaml:"preview_chars"`
}

// WatchConfig holds directory watcher configuration
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	InitialScan bool          `yaml:"initial_scan"`
	SkipHidden  bool          `yaml:"skip_hidden"`
}

// MetricsConfig holds the prometheus endpoint configuration; empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when neither a file nor the environment says otherwise.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            constants.DefaultDBPath,
			MaxConns:        4,
			MaxConnLifetime: 30 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Extract: ExtractConfig{
			PreviewChars: constants.PreviewChars,
		},
		Watch: WatchConfig{
			Debounce:   500 * time.Millisecond,
			SkipHidden: true,
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

// LoadConfigFile reads a YAML file over the defaults, then lets environment variables override it.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("DOCMETA_DB_PATH", c.Database.Path)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Extract.PreviewChars = getEnvAsInt("PREVIEW_CHARS", c.Extract.PreviewChars)
	c.Watch.Debounce = getEnvAsDuration("WATCH_DEBOUNCE", c.Watch.Debounce)
	c.Watch.InitialScan = getEnvAsBool("WATCH_INITIAL_SCAN", c.Watch.InitialScan)
	c.Watch.SkipHidden = getEnvAsBool("WATCH_SKIP_HIDDEN", c.Watch.SkipHidden)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// UsesPostgres reports whether the DSN points at a PostgreSQL server.
func (d DatabaseConfig) UsesPostgres() bool {
	dsn := strings.ToLower(d.DSN)
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN != "" && !c.Database.UsesPostgres() {
		errs = append(errs, errors.New("DB_URL must be a postgres:// URL"))
	}
	if c.Database.DSN == "" && strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("DOCMETA_DB_PATH is required"))
	}
	if c.Extract.PreviewChars <= 0 {
		errs = append(errs, errors.New("PREVIEW_CHARS must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.Log.Format))
	}
	if len(errs) > 0 {
		return NewAppError("CONFIG_ERROR", "invalid configuration", fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...)))
	}
	return nil
}
