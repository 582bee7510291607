// Package config loads and validates the filesort configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"filesort/internal/errors"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration. It is loaded once at startup
// and treated as read-only for the process lifetime; an explicit value is
// threaded through the monitor and engine rather than a global.
type Config struct {
	IncomingDirectory string            `yaml:"incoming_directory"` // Watched drop folder, relative to the base directory
	SortedDirectory   string            `yaml:"sorted_directory"`   // Root of the per-category destination folders
	ArchiveDirectory  string            `yaml:"archive_directory"`  // Root of the dated backup folders
	Extensions        map[string]string `yaml:"extensions"`         // Lowercase dotted extension -> category folder name
	Ignore            []string          `yaml:"ignore"`             // Glob patterns skipped before classification
	Settings          struct {
		DryRun bool `yaml:"dry_run"` // Log intended moves without touching the filesystem
	} `yaml:"settings"`
	Watch struct {
		Poll     bool `yaml:"poll"`     // Use the polling source instead of fsnotify
		Interval int  `yaml:"interval"` // Poll interval in seconds
	} `yaml:"watch"`
	Logging struct {
		File string `yaml:"file"` // Optional log file, teed with stdout
		JSON bool   `yaml:"json"` // Emit JSON log records
	} `yaml:"logging"`
}

// Load reads configuration from the default location
// (~/.config/filesort/config.yaml).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(home, ".config", "filesort", "config.yaml"))
}

// LoadFile reads configuration from a specific file path. A missing or
// unparseable file is an error: monitoring must never start against a
// configuration the operator did not actually provide.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("config file not found", path, errors.ConfigNotFound, err)
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.Unknown, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the default configuration. The extension table starts
// empty, which classifies every file as unsupported until configured.
func Default() *Config {
	cfg := &Config{
		IncomingDirectory: "incoming",
		SortedDirectory:   "sorted",
		ArchiveDirectory:  "archive",
		Extensions:        map[string]string{},
		Ignore:            []string{},
	}
	cfg.Watch.Interval = 2
	return cfg
}

// Save writes the configuration to the specified file, creating parent
// directories if they don't exist.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	dirs := map[string]string{
		"incoming_directory": c.IncomingDirectory,
		"sorted_directory":   c.SortedDirectory,
		"archive_directory":  c.ArchiveDirectory,
	}
	for param, value := range dirs {
		if value == "" {
			return errors.NewConfigError("directory name is required", param, errors.InvalidConfig, nil)
		}
		if filepath.IsAbs(value) {
			return errors.NewConfigError("directory name must be relative", param, errors.InvalidConfig, nil)
		}
	}

	for ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.NewConfigError("extension must include the leading dot", ext, errors.InvalidConfig, nil)
		}
		if ext != strings.ToLower(ext) {
			return errors.NewConfigError("extension must be lowercase", ext, errors.InvalidConfig, nil)
		}
	}

	for _, pattern := range c.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError("invalid ignore pattern", pattern, errors.InvalidConfig, err)
		}
	}

	if c.Watch.Poll && c.Watch.Interval < 1 {
		return errors.NewConfigError("poll interval must be >= 1 second", "watch.interval", errors.InvalidConfig, nil)
	}

	return nil
}

// Categories returns the distinct category folder names from the
// extension table.
func (c *Config) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, category := range c.Extensions {
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	return categories
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := Default()
	cfg.IncomingDirectory = "in"
	cfg.Extensions = map[string]string{
		".jpg": "images",
		".png": "images",
		".pdf": "documents",
	}
	return cfg
}
