// Package config loads the avro format plugin's configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel  = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrSkipFieldInvalid = errors.New("skip_field must be a plain field name")
)

// Config controls how the format plugin normalizes schemas and converts
// records.
type Config struct {
	// Schema optionally fixes the output schema (avro JSON text). When empty
	// the schema is derived from each record's own schema.
	Schema string `yaml:"schema"`
	// SkipField names a field the pipeline injects itself (e.g. a source
	// path or offset column); the transformer leaves it unset.
	SkipField  string           `yaml:"skip_field"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ValidationConfig toggles value-level validation rules.
type ValidationConfig struct {
	// Datetime validates datetime-tagged fields as ISO-8601 local date-times.
	Datetime bool `yaml:"datetime"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Validation: ValidationConfig{Datetime: true},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	for _, r := range c.SkipField {
		if r == '.' || r == ' ' {
			return ErrSkipFieldInvalid
		}
	}
	return nil
}
