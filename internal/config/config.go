// Package config loads switchblade's YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/switchblade/internal/ident"
)

// Defaults applied to fields the file leaves empty.
const (
	DefaultDatabase = "switchblade.db"
	DefaultLogLevel = "info"
)

// Config is the on-disk configuration.
type Config struct {
	// Database is the SQLite file path. Relative paths resolve against the
	// config file's directory.
	Database string `yaml:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Aliases maps record type names to table names.
	Aliases map[string]string `yaml:"aliases,omitempty"`

	// Records is a directory of CUE record definitions. Relative paths
	// resolve against the config file's directory.
	Records string `yaml:"records,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Database: DefaultDatabase, LogLevel: DefaultLogLevel}
}

// Load reads and validates a config file.
// Unknown fields (typos) are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Database) && cfg.Database != ":memory:" {
		cfg.Database = filepath.Join(base, cfg.Database)
	}
	if cfg.Records != "" && !filepath.IsAbs(cfg.Records) {
		cfg.Records = filepath.Join(base, cfg.Records)
	}
	return cfg, nil
}

// Parse decodes and validates config YAML without resolving paths.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for typeName, table := range c.Aliases {
		if _, err := ident.Normalize(typeName); err != nil {
			return fmt.Errorf("aliases: %w", err)
		}
		if _, err := ident.Normalize(table); err != nil {
			return fmt.Errorf("aliases[%s]: %w", typeName, err)
		}
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
