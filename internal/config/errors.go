package config

import "errors"

// Errors reported by Config.Validate. Details such as the offending column
// name are wrapped around them with %w, so callers match with errors.Is.
var (
	// ErrEmptyOutputDir is returned when the output directory is empty.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrInvalidColumns is returned when a CSV column does not name a
	// record field.
	ErrInvalidColumns = errors.New("invalid columns")

	// ErrUnknownFormat is returned when an export format is not one of
	// pdf, md or json.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrInvalidBatchSize is returned for a rebuild batch size below 1.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingFormats is returned when a listing command is asked
	// for --json and --markdown at once.
	ErrConflictingFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")
)
