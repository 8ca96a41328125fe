// Package logging provides concrete implementations of the cimflat.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr or any io.Writer
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
