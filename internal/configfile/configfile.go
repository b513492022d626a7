// Package configfile loads per-project settings from .tacks/config.yml.
//
// The config file is optional: a missing file yields defaults, and every
// field can be overridden by flags at the command layer.
package configfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDirName is the per-project data directory.
const DefaultDirName = ".tacks"

// DefaultDBName is the database file inside the data directory.
const DefaultDBName = "tacks.db"

// DefaultConfigName is the config file inside the data directory.
const DefaultConfigName = "config.yml"

// EnvDB overrides the database path when set.
const EnvDB = "TACKS_DB"

// Config holds project-level settings.
type Config struct {
	// Prefix for generated task IDs, e.g. "tk" yields tk-a1b2.
	Prefix string `yaml:"prefix,omitempty"`
	// DefaultPriority applies when a task is created without one.
	DefaultPriority *int `yaml:"default_priority,omitempty"`
	// Actor is the default assignee for claim operations.
	Actor string `yaml:"actor,omitempty"`
}

// Load reads the config file at path. A missing file is not an error;
// it returns zero-value defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.DefaultPriority != nil {
		p := *cfg.DefaultPriority
		if p < 0 || p > 4 {
			return nil, fmt.Errorf("invalid default_priority %d in %s: must be 0-4", p, path)
		}
	}
	return &cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DBPath resolves the database path. Precedence: explicit flag value,
// the TACKS_DB environment variable, then ./.tacks/tacks.db.
func DBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvDB); env != "" {
		return env
	}
	return filepath.Join(DefaultDirName, DefaultDBName)
}

// ConfigPath returns the config file path next to the database.
func ConfigPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), DefaultConfigName)
}
