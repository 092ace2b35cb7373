package config

import (
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
)

// Mode selects how captured parameters are persisted.
type Mode string

// Supported storage modes.
const (
	// ModeDurable persists captured parameters on disk until explicit
	// clear or retention expiry. This is the default.
	ModeDurable Mode = "durable"

	// ModeSession keeps captured parameters in memory only, so they
	// disappear when the process exits.
	ModeSession Mode = "session"
)

// Default configuration values. Where applicable these mirror the defaults
// of the original sc-utm-forwarder browser script.
const (
	// DefaultStorageKey is the key under which the captured parameter
	// record is stored. The sc_ prefix avoids collisions with other
	// tools sharing the same store.
	DefaultStorageKey = "sc_utm_params"

	// DefaultRetentionDays is how long a captured record stays valid in
	// durable mode. 30 days matches the attribution window most
	// marketing teams use; expired records are removed lazily on read.
	DefaultRetentionDays = 30

	// DefaultBatchSize is the number of HTML files rewritten
	// concurrently. Rewriting is CPU-light, so a small limit is enough
	// and keeps output ordering friendly.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "utmlink"
)

// DefaultParameters returns the default ordered set of tracked parameter
// names. Order matters: capture scans the landing URL in this order, and
// the composer appends missing parameters in this order.
func DefaultParameters() []string {
	return []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}
}

// DefaultDomains returns the default list of domain substrings eligible
// for link rewriting.
func DefaultDomains() []string {
	return []string{"typeform.com"}
}

// Config holds all configuration options for utmlink.
// It is populated from defaults, the .utmlink config file, UTMLINK_*
// environment variables, and finally CLI flags, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., StoreConfig, RewriteConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// StorageKey is the key the captured parameter record is stored under.
	StorageKey string `env:"UTMLINK_STORAGE_KEY"`

	// RetentionDays is the age, in days, after which a durable-mode
	// record is treated as absent and deleted on the next read.
	// Ignored in session mode.
	RetentionDays int `env:"UTMLINK_RETENTION_DAYS"`

	// Parameters is the ordered list of query parameter names to capture
	// from the landing URL and merge into eligible links.
	Parameters []string `env:"UTMLINK_PARAMETERS"`

	// Domains is the list of host substrings eligible for rewriting.
	// Matching is a deliberate coarse substring check: "typeform.com"
	// also matches "form.typeform.com" without enumerating subdomains,
	// and unrelated hosts sharing the substring match too.
	Domains []string `env:"UTMLINK_DOMAINS"`

	// StorageMode selects durable (on-disk) or session (in-memory)
	// persistence of the captured record.
	StorageMode Mode `env:"UTMLINK_STORAGE_MODE"`

	// Verbose enables diagnostic trace logging for capture, expiry, and
	// each link rewrite (before/after URL). When false, only warnings
	// and errors are logged.
	Verbose bool `env:"UTMLINK_VERBOSE"`

	// PageURL is the landing page URL to capture parameters from.
	// Empty means no capture is performed before rewriting.
	PageURL string

	// Targets is the list of HTML files to rewrite. A single "-" entry
	// means stdin.
	Targets []string

	// OutputDir is the directory rewritten documents are written to.
	// Empty means stdout (single target) unless InPlace is set.
	OutputDir string

	// InPlace rewrites each target file in place instead of writing to
	// OutputDir or stdout. Mutually exclusive with OutputDir.
	InPlace bool

	// ReportFile is the path a Markdown rewrite summary is written to.
	// Empty disables the report.
	ReportFile string

	// BatchSize is the number of target files processed concurrently.
	BatchSize int

	// Charset overrides automatic character set detection when reading
	// HTML files (e.g., "iso-8859-1"). Empty means detect.
	Charset string

	// DataDir is the directory the durable store lives in.
	// Defaults to the XDG data directory.
	DataDir string `env:"UTMLINK_DATA_DIR"`

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .utmlink in the current directory and then
	// in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		StorageKey:    DefaultStorageKey,
		RetentionDays: DefaultRetentionDays,
		Parameters:    DefaultParameters(),
		Domains:       DefaultDomains(),
		StorageMode:   ModeDurable,
		BatchSize:     DefaultBatchSize,
		DataDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for utmlink.
// On Linux: ~/.local/share/utmlink
// On macOS: ~/Library/Application Support/utmlink
// On Windows: %LOCALAPPDATA%\utmlink
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for utmlink.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// TrackedParameter reports whether name is one of the configured tracked
// parameter names.
func (c *Config) TrackedParameter(name string) bool {
	return slices.Contains(c.Parameters, name)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.StorageKey == "" {
		return ErrEmptyStorageKey
	}

	if len(c.Parameters) == 0 {
		return ErrNoParameters
	}

	switch c.StorageMode {
	case ModeDurable, ModeSession:
	default:
		return ErrInvalidStorageMode
	}

	// Retention only applies to durable mode; zero or negative would
	// expire every record immediately.
	if c.StorageMode == ModeDurable && c.RetentionDays <= 0 {
		return ErrInvalidRetention
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.InPlace && c.OutputDir != "" {
		return ErrConflictingOutputs
	}

	return nil
}
