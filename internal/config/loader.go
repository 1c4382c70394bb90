package config

import (
	"errors"
	"fmt"
	"os"

	"hubgate/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig resolves the gateway configuration. configPath names an
// optional YAML file; an empty path or a missing file falls back to
// defaults. Environment variables are applied last and win, matching how
// the hub hands its launch contract to single-user servers.
func LoadConfig(configPath string) (Config, error) {
	// A .env file is a development convenience only; absence is normal.
	if err := godotenv.Load(); err == nil {
		logging.Debug("ConfigLoader", "Loaded environment overrides from .env")
	}

	cfg := GetDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logging.Info("ConfigLoader", "No config file at %s, using defaults", configPath)
			} else {
				return Config{}, fmt.Errorf("error reading config from %s: %w", configPath, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				// config malformed
				return Config{}, fmt.Errorf("error loading config from %s: %w", configPath, err)
			}
			logging.Info("ConfigLoader", "Loaded configuration from %s", configPath)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing environment configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
