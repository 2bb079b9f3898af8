package config

import "errors"

// Configuration validation errors returned by Config.Validate and the
// parsing helpers. Callers match them with errors.Is.
var (
	// ErrNoInput is returned when neither an image folder nor text files
	// are given.
	ErrNoInput = errors.New("no input specified: provide an image folder or use --from-text")

	// ErrConflictingInputs is returned when both an image folder and text
	// files are given.
	ErrConflictingInputs = errors.New("conflicting inputs: an image folder and --from-text cannot be used together")

	// ErrInvalidColor is returned for a filter color other than yellow or red.
	ErrInvalidColor = errors.New("invalid color: use y, yellow, r or red")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoOutput is returned when the player or diagnostics file is empty.
	ErrNoOutput = errors.New("output and diagnostics files must be set")

	// ErrInvalidDate is returned for a date in none of the accepted layouts.
	ErrInvalidDate = errors.New("invalid date: use yyyy-MM-dd or yyyy-MM-dd HH:mm")

	// ErrInvalidMergePolicy is returned for an unknown merge policy name.
	ErrInvalidMergePolicy = errors.New("invalid merge policy: use keep-first or keep-last")
)
