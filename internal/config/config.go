// Package config loads AquaAssist settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/logging"
	"github.com/abhisek/aquaassist/internal/notify"
	"github.com/abhisek/aquaassist/internal/predictor"
	"github.com/abhisek/aquaassist/internal/speech"
)

// Config is the whole application configuration. Secrets (API keys, the
// PostgreSQL DSN) carry yaml:"-" and come from the environment only.
type Config struct {
	History   history.Config   `yaml:"history"`
	Predictor predictor.Config `yaml:"predictor"`
	Catalog   CatalogConfig    `yaml:"catalog"`
	Speech    speech.Config    `yaml:"speech"`
	Notify    notify.Config    `yaml:"notify"`
	Log       logging.Config   `yaml:"log"`
}

// CatalogConfig points at an advisory catalog file. Empty uses the
// built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path" env:"AQUA_CATALOG"`
}

// Load reads path when given, otherwise the default config file if one
// exists, and applies AQUA_* environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks backend and predictor selections.
func (c *Config) Validate() error {
	var errs []error
	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	if err := c.Predictor.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("predictor: %w", err))
	}
	if c.Catalog.Path != "" {
		if _, err := os.Stat(c.Catalog.Path); err != nil {
			errs = append(errs, fmt.Errorf("catalog: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DefaultPath resolves the config file location:
// 1. AQUA_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/aquaassist/config.yaml
// 3. ~/.config/aquaassist/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("AQUA_CONFIG"); p != "" {
		return p, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "aquaassist", "config.yaml"), nil
}
