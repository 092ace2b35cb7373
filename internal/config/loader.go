package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".utmlink"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .utmlink configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	// StorageKey overrides the key the captured record is stored under.
	StorageKey string `yaml:"storageKey,omitempty"`

	// RetentionDays overrides the durable-mode retention window.
	RetentionDays int `yaml:"retentionDays,omitempty"`

	// Parameters overrides the ordered tracked parameter names.
	Parameters []string `yaml:"parameters,omitempty"`

	// Domains overrides the eligible domain substrings.
	Domains []string `yaml:"domains,omitempty"`

	// StorageMode overrides the storage mode ("durable" or "session").
	StorageMode string `yaml:"storageMode,omitempty"`

	// Verbose enables diagnostic logging.
	Verbose *bool `yaml:"verbose,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .utmlink in the current directory
// 3. Look for .utmlink in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply merges the file's set fields into the config.
// Unset fields leave the config untouched.
func (cf *File) Apply(cfg *Config) {
	if cf.StorageKey != "" {
		cfg.StorageKey = cf.StorageKey
	}
	if cf.RetentionDays != 0 {
		cfg.RetentionDays = cf.RetentionDays
	}
	if len(cf.Parameters) > 0 {
		cfg.Parameters = cf.Parameters
	}
	if len(cf.Domains) > 0 {
		cfg.Domains = cf.Domains
	}
	if cf.StorageMode != "" {
		cfg.StorageMode = Mode(cf.StorageMode)
	}
	if cf.Verbose != nil {
		cfg.Verbose = *cf.Verbose
	}
}

// ApplyEnv applies UTMLINK_* environment variable overrides to the config.
// Environment variables take precedence over the config file but not over
// CLI flags, which are applied by the caller afterwards.
//
// List-valued variables use comma separation, e.g.
// UTMLINK_PARAMETERS=utm_source,utm_medium.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}
