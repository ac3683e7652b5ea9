// Package config provides Viper-based configuration management for sheetdash
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
)

// Config represents the complete sheetdash configuration
type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Cache    CacheConfig            `mapstructure:"cache"`
	Fetch    FetchConfig            `mapstructure:"fetch"`
	Logging  LoggingConfig          `mapstructure:"logging"`
	Output   OutputConfig           `mapstructure:"output"`
	Palettes map[string][]string    `mapstructure:"palettes"`
	Cards    []sheetdash.CardConfig `mapstructure:"cards"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestRate is the per-client request rate; 0 disables limiting.
	RequestRate  float64 `mapstructure:"request_rate"`
	RequestBurst int     `mapstructure:"request_burst"`
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// FetchConfig contains export download settings
type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Rate     float64       `mapstructure:"rate"`
	Burst    int           `mapstructure:"burst"`
	MaxBytes int64         `mapstructure:"max_bytes"`
	// Concurrency caps how many cards load at once.
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains CLI output settings
type OutputConfig struct {
	Colors bool   `mapstructure:"colors"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".sheetdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sheetdash")
	}

	v.SetEnvPrefix("SHEETDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.request_rate", 20.0)
	v.SetDefault("server.request_burst", 40)

	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.sweep_interval", time.Minute)

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.rate", 5.0)
	v.SetDefault("fetch.burst", 10)
	v.SetDefault("fetch.max_bytes", int64(32<<20))
	v.SetDefault("fetch.concurrency", 8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
	v.SetDefault("output.format", "table")

	v.SetDefault("palettes.default", sheetdash.DefaultPalette)
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl: %s (must be positive)", cfg.Cache.TTL)
	}
	if cfg.Cache.SweepInterval <= 0 {
		return fmt.Errorf("invalid cache sweep interval: %s (must be positive)", cfg.Cache.SweepInterval)
	}
	if cfg.Fetch.Rate < 0 || cfg.Server.RequestRate < 0 {
		return fmt.Errorf("rates must not be negative")
	}
	if cfg.Fetch.Concurrency < 1 {
		return fmt.Errorf("invalid fetch concurrency: %d (must be at least 1)", cfg.Fetch.Concurrency)
	}

	seen := make(map[string]bool, len(cfg.Cards))
	for _, card := range cfg.Cards {
		if err := card.Validate(); err != nil {
			return err
		}
		if seen[card.ID] {
			return fmt.Errorf("duplicate card id: %s", card.ID)
		}
		seen[card.ID] = true
		if card.Palette != "" && len(card.Colors) == 0 {
			if _, ok := cfg.Palettes[card.Palette]; !ok {
				return fmt.Errorf("card %s: unknown palette %q", card.ID, card.Palette)
			}
		}
	}

	return nil
}
