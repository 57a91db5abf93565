// Package config loads the adreward server settings from the environment.
package config

import (
	"github.com/caarlos0/env/v11"

	"adreward/internal/config/configs"
)

// Config is the full server configuration. Each section reads the
// variables under its prefix; defaults live on the section types.
type Config struct {
	// Env is attached to every log record, e.g. prod or dev.
	Env string `env:"ENV" envDefault:"prod"`

	HTTP configs.HTTP     `envPrefix:"HTTP_"`
	Log  configs.Logger   `envPrefix:"LOG_"`
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Store picks memory or postgres and the admin account seeded at start.
	Store configs.Store `envPrefix:"STORE_"`

	// Reward holds the watch ratio, the day boundary and the countdown mode.
	Reward configs.Reward `envPrefix:"REWARD_"`
}

// Load parses the environment and rejects reward settings the viewer
// cannot work with.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Reward.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
