// Package config loads the settings that wire together a running
// database instance: where its data files live, how big its buffer
// pool is, and how it logs. It is deliberately thin — a struct, a
// loader, and defaults — the rest of the engine consumes the result
// through plain function arguments rather than reaching back into this
// package.
package config

import (
	"fmt"
	"os"
	"storemy/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a database's YAML settings file.
type Config struct {
	DataDir       string        `yaml:"data_dir"`
	BufferPoolMax int           `yaml:"buffer_pool_max_pages"`
	Logging       LoggingConfig `yaml:"logging"`
}

// LoggingConfig mirrors logging.Config so a deployment can pick its log
// level, format, and destination without touching code.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"output_path"`
	Format     string `yaml:"format"`
}

// Default returns the configuration a fresh instance runs with if no
// file is supplied.
func Default() Config {
	return Config{
		DataDir:       "./data",
		BufferPoolMax: 50,
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load reads a YAML file at path and merges it over Default. A zero
// value for any field falls back to the default rather than clobbering
// it, so a settings file only needs to mention what it overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if override.DataDir != "" {
		cfg.DataDir = override.DataDir
	}
	if override.BufferPoolMax > 0 {
		cfg.BufferPoolMax = override.BufferPoolMax
	}
	if override.Logging.Level != "" {
		cfg.Logging.Level = override.Logging.Level
	}
	if override.Logging.OutputPath != "" {
		cfg.Logging.OutputPath = override.Logging.OutputPath
	}
	if override.Logging.Format != "" {
		cfg.Logging.Format = override.Logging.Format
	}

	return cfg, nil
}

// ToLoggingConfig converts to the shape logging.Init expects.
func (c Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:      logging.LogLevel(c.Logging.Level),
		OutputPath: c.Logging.OutputPath,
		Format:     c.Logging.Format,
	}
}
