// Package config provides configuration management for the application.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "krx-sentinel/internal/errors"
	"krx-sentinel/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Watch   WatchConfig   `mapstructure:"watch"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Toast   ToastConfig   `mapstructure:"toast"`
	History HistoryConfig `mapstructure:"history"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Logging LoggingConfig `mapstructure:"logging"`
	Alerts  []RuleConfig  `mapstructure:"alerts"`
}

// WatchConfig selects the default instrument to monitor.
type WatchConfig struct {
	Ticker string `mapstructure:"ticker"`
	Name   string `mapstructure:"name"`
}

// FeedConfig holds market data feed configuration.
type FeedConfig struct {
	URL                 string `mapstructure:"url"`
	ReconnectSeconds    int    `mapstructure:"reconnect_seconds"`
	MaxReconnectSeconds int    `mapstructure:"max_reconnect_seconds"`
}

// ToastConfig holds toast notification configuration.
type ToastConfig struct {
	DurationSeconds int  `mapstructure:"duration_seconds"`
	Bell            bool `mapstructure:"bell"`
	Color           bool `mapstructure:"color"`
}

// HistoryConfig holds alert history configuration.
type HistoryConfig struct {
	Capacity int    `mapstructure:"capacity"`
	DBPath   string `mapstructure:"db_path"`
}

// AuditConfig holds the best-effort audit endpoint configuration.
type AuditConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
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

// RuleConfig is one alert rule as declared in the config file. Rule
// definitions are read-only configuration; there is no rule CRUD.
type RuleConfig struct {
	ID          int64   `mapstructure:"id"`
	Ticker      string  `mapstructure:"ticker"`
	Type        string  `mapstructure:"type"`
	Direction   string  `mapstructure:"direction"`
	TargetPrice float64 `mapstructure:"target_price"`
	Memo        string  `mapstructure:"memo"`
	Active      bool    `mapstructure:"active"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".krx-sentinel"
	}
	return filepath.Join(home, ".config", "krx-sentinel")
}

// Load reads configuration from dir (default: DefaultConfigDir),
// applying defaults and SENTINEL_* environment overrides. A missing
// config file is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("SENTINEL")
	v.AutomaticEnv()

	setDefaults(v, dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("feed.url", "ws://127.0.0.1:8125/stream")
	v.SetDefault("feed.reconnect_seconds", 1)
	v.SetDefault("feed.max_reconnect_seconds", 30)

	v.SetDefault("toast.duration_seconds", 5)
	v.SetDefault("toast.bell", true)
	v.SetDefault("toast.color", true)

	v.SetDefault("history.capacity", 50)
	v.SetDefault("history.db_path", filepath.Join(dir, "sentinel.db"))

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.timeout_seconds", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(dir, "logs", "sentinel.log"))
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.History.Capacity <= 0 {
		return apperrors.NewValidationError("history.capacity", c.History.Capacity, "must be positive")
	}
	if c.Toast.DurationSeconds <= 0 {
		return apperrors.NewValidationError("toast.duration_seconds", c.Toast.DurationSeconds, "must be positive")
	}
	if c.Audit.Enabled && c.Audit.URL == "" {
		return apperrors.NewValidationError("audit.url", c.Audit.URL, "required when audit is enabled")
	}
	for _, r := range c.Alerts {
		switch models.AlertType(r.Type) {
		case models.AlertBuy, models.AlertSell, models.AlertPriceChange, models.AlertTradingSignal:
		default:
			return apperrors.NewValidationError("alerts.type", r.Type, "unknown alert type")
		}
		if r.Ticker == "" {
			return apperrors.NewValidationError("alerts.ticker", r.Ticker, "must not be empty")
		}
	}
	return nil
}

// Rules converts the configured alert rules to model rules.
func (c *Config) Rules() []models.AlertRule {
	rules := make([]models.AlertRule, 0, len(c.Alerts))
	for _, r := range c.Alerts {
		rules = append(rules, models.AlertRule{
			ID:          r.ID,
			Ticker:      r.Ticker,
			Type:        models.AlertType(r.Type),
			Direction:   models.Direction(r.Direction),
			TargetPrice: r.TargetPrice,
			Memo:        r.Memo,
			Active:      r.Active,
		})
	}
	return rules
}

// ToastDuration returns the configured toast duration.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Toast.DurationSeconds) * time.Second
}

// AuditTimeout returns the configured audit request timeout.
func (c *Config) AuditTimeout() time.Duration {
	return time.Duration(c.Audit.TimeoutSeconds) * time.Second
}
