// Package config loads the YAML configuration shared by the CLI and the
// shared library.
package config

import (
	"fmt"
	"os"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/opt"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config path read by
// the shared library.
const EnvVar = "MCSBRIDGE_CONFIG"

// Version is reported by the CLI and by mcs_version. Release builds set it
// with -ldflags "-X github.com/cwbudde/mcsbridge/internal/config.Version=...".
var Version = "0.1.0"

// Config is the top-level configuration
type Config struct {
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	Engine    string       `yaml:"engine"`
	Menu      bridge.Menu  `yaml:"menu"`
	Mayfly    MayflyConfig `yaml:"mayfly"`
	Defaults  RunDefaults  `yaml:"defaults"`
}

// MayflyConfig configures the mayfly engine
type MayflyConfig struct {
	Population int   `yaml:"population"`
	Seed       int64 `yaml:"seed"`
}

// RunDefaults are the CLI's default run parameters
type RunDefaults struct {
	SMax      int     `yaml:"smax"`
	MaxSweeps int     `yaml:"max_sweeps"`
	MaxEvals  int     `yaml:"max_evals"`
	Local     int     `yaml:"local"`
	Gamma     float64 `yaml:"gamma"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Engine:    opt.EngineMCS,
		Menu:      bridge.DefaultMenu(),
		Mayfly: MayflyConfig{
			Population: 20,
			Seed:       42,
		},
		Defaults: RunDefaults{
			SMax:      20,
			MaxSweeps: 1000,
			MaxEvals:  100000,
			Local:     50,
			Gamma:     1e-12,
		},
	}
}

// ParseConfigYAML parses a Config from YAML bytes and validates it.
// Keys missing from data keep their Default values.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by $MCSBRIDGE_CONFIG, or returns Default
// when the variable is unset.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	switch cfg.Engine {
	case opt.EngineMCS, opt.EngineMayfly:
	default:
		return fmt.Errorf("invalid engine: %s (must be %s or %s)", cfg.Engine, opt.EngineMCS, opt.EngineMayfly)
	}

	if err := cfg.Menu.Validate(); err != nil {
		return fmt.Errorf("menu validation failed: %w", err)
	}

	if cfg.Mayfly.Population < 20 {
		return fmt.Errorf("mayfly: population must be at least 20, got %d", cfg.Mayfly.Population)
	}

	d := cfg.Defaults
	if d.SMax < 1 {
		return fmt.Errorf("defaults: smax must be positive")
	}
	if d.MaxSweeps < 0 || d.MaxEvals < 1 || d.Local < 0 {
		return fmt.Errorf("defaults: max_evals must be positive, max_sweeps and local cannot be negative")
	}
	if d.Gamma < 0 {
		return fmt.Errorf("defaults: gamma cannot be negative")
	}

	return nil
}

// Optimizer builds the configured engine
func (c *Config) Optimizer() (opt.Optimizer, error) {
	return opt.New(c.Engine, c.Mayfly.Population, c.Mayfly.Seed)
}

// Dispatcher builds a dispatcher over the configured menu and engine
func (c *Config) Dispatcher() (*bridge.Dispatcher, error) {
	o, err := c.Optimizer()
	if err != nil {
		return nil, err
	}
	return bridge.NewDispatcher(c.Menu, o)
}
