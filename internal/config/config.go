// Package config loads the optional bfc.yaml configuration file.  Every
// field has a default, so the compiler works without any config present.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bfc/internal/logging"
)

// DefaultMemSize is the number of tape cells given to a program when the
// config and flags say nothing else.
const DefaultMemSize = 100000

// Config holds the user-tunable settings.
type Config struct {
	MemSize   uint            `yaml:"mem_size"`
	Cache     CacheConfig     `yaml:"cache"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Log       LogConfig       `yaml:"log"`
}

// CacheConfig controls the build cache.
type CacheConfig struct {
	Disabled bool   `yaml:"disabled"`
	Dir      string `yaml:"dir"` // empty selects the per-user default
}

// ToolchainConfig pins external tool paths and the opt pass level.
type ToolchainConfig struct {
	Opt      string `yaml:"opt"`
	LLC      string `yaml:"llc"`
	Linker   string `yaml:"linker"`
	OptLevel string `yaml:"opt_level"` // "O0".."O3", empty skips the opt pass
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		MemSize: DefaultMemSize,
		Toolchain: ToolchainConfig{
			OptLevel: "O2",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel maps the configured level name onto the logging package.
// Unknown names fall back to info.
func (c *Config) LogLevel() logging.Level {
	switch c.Log.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// LogFormat maps the configured format name onto the logging package.
func (c *Config) LogFormat() logging.Format {
	if c.Log.Format == "json" {
		return logging.FormatJSON
	}
	return logging.FormatText
}
