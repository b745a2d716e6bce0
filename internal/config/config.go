// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	jerrors "trading-journal/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Journal  JournalConfig  `mapstructure:"journal"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// JournalConfig holds journaling and streak policy configuration.
type JournalConfig struct {
	UserID             string  `mapstructure:"user_id"`
	Timezone           string  `mapstructure:"timezone"`
	RestDaysPerWeek    int     `mapstructure:"rest_days_per_week"`
	InstrumentsFile    string  `mapstructure:"instruments_file"`
	DefaultInstrument  string  `mapstructure:"default_instrument"`
	DefaultPositionLot float64 `mapstructure:"default_position_lot"`
}

// DatabaseConfig holds journal store configuration.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"` // sqlite3, postgres
	DSN            string        `mapstructure:"dsn"`
	ConnectRetries int           `mapstructure:"connect_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

// APIConfig holds HTTP API configuration.
type APIConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// CacheConfig holds dashboard cache configuration.
type CacheConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	PurgeCron string        `mapstructure:"purge_cron"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	Currency     string `mapstructure:"currency"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-journal"
	}
	return filepath.Join(home, ".config", "trading-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the commented template before loading.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := loadDotEnv(configDir); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{Dir: configDir}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads <configDir>/.env when present. Existing environment
// variables win over the file.
func loadDotEnv(configDir string) error {
	path := filepath.Join(configDir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("journal.user_id", "local")
	v.SetDefault("journal.timezone", "UTC")
	v.SetDefault("journal.rest_days_per_week", 1)
	v.SetDefault("journal.instruments_file", filepath.Join(configDir, "instruments.yaml"))
	v.SetDefault("journal.default_instrument", "EURUSD")
	v.SetDefault("journal.default_position_lot", 1.0)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", filepath.Join(configDir, "journal.db"))
	v.SetDefault("database.connect_retries", 3)
	v.SetDefault("database.retry_delay", 500*time.Millisecond)

	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 10*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.rate_burst", 20)

	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.purge_cron", "0 0 0 * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.currency", "$")
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_USER_ID"); v != "" {
		cfg.Journal.UserID = v
	}
	if v := os.Getenv("JOURNAL_TIMEZONE"); v != "" {
		cfg.Journal.Timezone = v
	}
	if v := os.Getenv("JOURNAL_REST_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Journal.RestDaysPerWeek = n
		}
	}
	if v := os.Getenv("JOURNAL_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("JOURNAL_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JOURNAL_API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Journal.UserID == "" {
		return fmt.Errorf("%w: journal.user_id must not be empty", jerrors.ErrConfigInvalid)
	}
	if _, err := time.LoadLocation(c.Journal.Timezone); err != nil {
		return fmt.Errorf("%w: unknown journal.timezone %q", jerrors.ErrConfigInvalid, c.Journal.Timezone)
	}
	if c.Journal.RestDaysPerWeek < 0 || c.Journal.RestDaysPerWeek > 7 {
		return fmt.Errorf("%w: journal.rest_days_per_week must be between 0 and 7", jerrors.ErrConfigInvalid)
	}
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return fmt.Errorf("%w: invalid database.driver %q (must be 'sqlite3' or 'postgres')", jerrors.ErrConfigInvalid, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn must not be empty", jerrors.ErrConfigInvalid)
	}
	if c.API.RateLimit < 0 || c.API.RateBurst < 0 {
		return fmt.Errorf("%w: api.rate_limit and api.rate_burst must be non-negative", jerrors.ErrConfigInvalid)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must be non-negative", jerrors.ErrConfigInvalid)
	}
	return nil
}

// Location returns the journal time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
