// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Playback PlaybackConfig `yaml:"playback"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// LoggingConfig represents logger configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout" validate:"oneof=stdout stderr file"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	File   string `yaml:"file" validate:"required_if=Output file"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	DuckVolume       float64 `yaml:"duck_volume" default:"0.2" validate:"gt=0,lte=1"`
	CompletionPollMs int     `yaml:"completion_poll_ms" default:"100" validate:"gte=10,lte=1000"`
}

// CatalogConfig represents the catalog source configuration. Settings are
// source-specific and decoded by the catalog factory.
type CatalogConfig struct {
	Type     string         `yaml:"type" default:"file" validate:"required,oneof=file spotify"`
	Settings map[string]any `yaml:"settings"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
