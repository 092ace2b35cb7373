package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrEmptyStorageKey is returned when the storage key is empty.
	// The captured parameter record needs a key to be stored under.
	ErrEmptyStorageKey = errors.New("empty storage key: set storageKey in the config file or UTMLINK_STORAGE_KEY")

	// ErrNoParameters is returned when the tracked parameter list is empty.
	// With nothing to track there is nothing to capture or forward.
	ErrNoParameters = errors.New("no tracked parameters configured")

	// ErrInvalidStorageMode is returned when the storage mode is neither
	// "durable" nor "session".
	ErrInvalidStorageMode = errors.New(`invalid storage mode: must be "durable" or "session"`)

	// ErrInvalidRetention is returned when retention days is not positive
	// in durable mode. A non-positive retention would expire every record
	// on first read.
	ErrInvalidRetention = errors.New("invalid retention: must be a positive number of days")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no files are processed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingOutputs is returned when both --in-place and
	// --output-dir are specified. Only one output destination can be
	// used at a time.
	ErrConflictingOutputs = errors.New("conflicting outputs: --in-place and --output-dir cannot be used together")
)
