package sink

import (
	"unicode/utf8"

	"github.com/vvka-141/cimflat/internal/checksum"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// digestLength is the number of hex digits appended to shortened names.
const digestLength = 8

// Identifier fits name into cimflat.MaxIdentifierLength bytes. Longer names
// keep a prefix cut on a rune boundary followed by "_" and a digest of the
// full name, so distinct long names stay distinct.
func Identifier(name string) string {
	if len(name) <= cimflat.MaxIdentifierLength {
		return name
	}
	digest := checksum.Short(name, digestLength)
	keep := cimflat.MaxIdentifierLength - digestLength - 1
	for keep > 0 && !utf8.RuneStart(name[keep]) {
		keep--
	}
	return name[:keep] + "_" + digest
}

// Identifiers applies Identifier to every name and reports whether any was
// shortened.
func Identifiers(names []string) ([]string, bool) {
	out := make([]string, len(names))
	shortened := false
	for i, n := range names {
		out[i] = Identifier(n)
		if out[i] != n {
			shortened = true
		}
	}
	return out, shortened
}
