package cimflat

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Conversion completed (possibly with no objects)
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or flags
	ExitConnectionError  = 11 // PostgreSQL sink could not connect
	ExitObjectNotFound   = 12 // Requested identifier does not exist
	ExitSinkFailed       = 13 // One or more outputs could not be written
	ExitInputUnavailable = 14 // No readable document in the input
)

const (
	// DefaultMaxPasses caps resolution passes when the reference graph does
	// not converge earlier.
	DefaultMaxPasses = 64

	// DefaultDocumentPattern selects the document inside an archive or directory.
	DefaultDocumentPattern = "**/*.xml"

	// DefaultOutputDir receives the enriched tables.
	DefaultOutputDir = "output_enriched"

	// DefaultCleanOutputDir receives the clean tables.
	DefaultCleanOutputDir = "output_clean"

	// DefaultSchema is the PostgreSQL schema tables are loaded into.
	DefaultSchema = "public"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "cimflat.yaml"

	// DefaultEnvFile is loaded when present.
	DefaultEnvFile = ".env"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxIdentifierLength is the PostgreSQL limit for table and column names in bytes.
	MaxIdentifierLength = 63
)

// Output formats understood by the file sinks.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)
