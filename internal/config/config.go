// Package config loads curves settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/curves/internal/series"
)

// Config holds settings shared by all commands. Command-line flags override
// the values read here.
type Config struct {
	LogDir      string `env:"CURVES_LOG_DIR" envDefault:"data"`
	PlotsDir    string `env:"CURVES_PLOTS_DIR" envDefault:"plots"`
	EventPrefix string `env:"CURVES_EVENT_PREFIX"` // empty selects series.DefaultPrefix
	CacheDB     string `env:"CURVES_CACHE"` // SQLite series cache; empty disables it
	LogLevel    string `env:"CURVES_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"CURVES_LOG_FORMAT" envDefault:"text"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.EventPrefix == "" {
		cfg.EventPrefix = series.DefaultPrefix
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("CURVES_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
