// Package canonical normalizes identifier strings so that declarations
// (rdf:ID="_abc") and references (rdf:resource="#_abc") compare equal.
package canonical

import "strings"

// Canonicalize strips the marker prefixes of an identifier.
//
// A leading "#_" is removed, otherwise a leading "#"; after that a single
// leading "_" is removed. The second result is false when nothing is left.
//
//	Canonicalize("#_abc") // "abc", true
//	Canonicalize("#abc")  // "abc", true
//	Canonicalize("_abc")  // "abc", true
//	Canonicalize("#")     // "", false
func Canonicalize(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	text := raw
	switch {
	case strings.HasPrefix(text, "#_"):
		text = text[2:]
	case strings.HasPrefix(text, "#"):
		text = text[1:]
	}
	text = strings.TrimPrefix(text, "_")

	if text == "" {
		return "", false
	}
	return text, true
}

// LocalName reduces a qualified name to its unqualified suffix.
// Both Clark notation ("{uri}Tag") and prefixed names ("cim:Tag") are handled.
func LocalName(name string) string {
	if i := strings.LastIndexByte(name, '}'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// FragmentSuffix returns the part of a URI reference after the last '#'.
// A value without '#' is returned unchanged.
func FragmentSuffix(ref string) string {
	if i := strings.LastIndexByte(ref, '#'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
