// Package filesystem provides the read-only filesystem abstraction input
// documents are located through.
//
// Key interfaces:
//   - FileSystemProvider: opens directories and files, stats paths
//   - Directory: a tree that can be walked in lexical order
//   - File: an entry found while walking
//   - Content: random-access file content, as needed by zip archives
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
