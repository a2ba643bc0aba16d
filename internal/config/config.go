// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "tradejournal/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JournalConfig holds journal defaults applied when a plan leaves them unset.
type JournalConfig struct {
	// DefaultInitialCapital backs statistics for trades recorded outside any
	// plan, or for plans created without a capital figure.
	DefaultInitialCapital float64 `mapstructure:"default_initial_capital"`
	// DefaultRiskReward is the target R:R used to suggest a take-profit when
	// a new plan does not specify one.
	DefaultRiskReward float64 `mapstructure:"default_risk_reward"`
}

// AdvisorConfig holds settings for the optional LLM performance review.
type AdvisorConfig struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
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

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradejournal"
	}
	return filepath.Join(home, ".config", "tradejournal")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is not an
// error; defaults apply and a template is written for editing.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := writeTemplate(configDir); err != nil {
				return nil, fmt.Errorf("writing config template: %w", err)
			}
		} else {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("journal.default_initial_capital", 1000.0)
	v.SetDefault("journal.default_risk_reward", 2.0)
	v.SetDefault("advisor.model", "gpt-4o-mini")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "tradejournal.log"))
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("TRADEJOURNAL_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRADEJOURNAL_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", apperrors.ErrConfigInvalid)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", apperrors.ErrConfigInvalid)
	}
	if c.Journal.DefaultInitialCapital < 0 {
		return fmt.Errorf("%w: journal.default_initial_capital must not be negative", apperrors.ErrConfigInvalid)
	}
	if c.Journal.DefaultRiskReward <= 0 {
		return fmt.Errorf("%w: journal.default_risk_reward must be positive", apperrors.ErrConfigInvalid)
	}
	return nil
}
