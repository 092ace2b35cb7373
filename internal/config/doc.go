// Package config provides configuration structures and utilities for utmlink.
// It defines the tracked parameter set, eligible domain list, storage mode,
// and retention settings, and loads overrides from the .utmlink YAML file
// and UTMLINK_* environment variables.
package config
