// Package checksum provides document hashing.
//
// Two checksums identify an input document:
//
//   - Raw checksum: hash of the exact bytes (detects all changes)
//   - Normalized checksum: hash after removing XML comments and formatting
//     whitespace, so a re-indented export of the same model hashes equally
//
// Short derives compact digests used to keep generated identifiers unique
// when they have to be truncated.
//
// # Example Usage
//
//	calculator := checksum.New()
//	raw := calculator.CalculateRaw(content)
//	normalized := calculator.CalculateNormalized(content)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
