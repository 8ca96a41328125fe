package cimflat

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := converter.Convert(ctx, req)
//	if errors.Is(err, cimflat.ErrInputUnavailable) {
//	    // nothing was written
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputUnavailable indicates the input archive, directory or document
	// could not be located, read or parsed.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrSinkFailed indicates at least one output table could not be written.
	ErrSinkFailed = errors.New("writing output failed")

	// ErrObjectNotFound indicates a requested identifier is not in the index.
	ErrObjectNotFound = errors.New("object not found")

	// ErrConnectionFailed indicates the PostgreSQL sink could not connect.
	ErrConnectionFailed = errors.New("database connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInputUnavailable):
		return ExitInputUnavailable
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSinkFailed):
		return ExitSinkFailed
	case errors.Is(err, ErrObjectNotFound):
		return ExitObjectNotFound
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}
