package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vvka-141/cimflat/internal/canonical"
	"github.com/vvka-141/cimflat/internal/checksum"
	"github.com/vvka-141/cimflat/internal/index"
	"github.com/vvka-141/cimflat/internal/record"
	"github.com/vvka-141/cimflat/internal/resolve"
	"github.com/vvka-141/cimflat/internal/source"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// Session holds everything one conversion derived from its document.
// The index belongs to the session and is never shared between runs.
type Session struct {
	ID       uuid.UUID
	Document *source.Document
	// Digest is the SHA-256 of the document bytes, hex encoded.
	Digest string
	// NormalizedDigest ignores comments and formatting whitespace, so
	// re-exported copies of the same model compare equal.
	NormalizedDigest string
	Index            *index.Index
	Classes          *record.Classes
	Stats            resolve.Stats
}

func newSession(doc *source.Document, sums checksum.Calculator) *Session {
	return &Session{
		ID:               uuid.New(),
		Document:         doc,
		Digest:           sums.CalculateRaw(doc.Content),
		NormalizedDigest: sums.CalculateNormalized(doc.Content),
		Index:            index.New(),
		Classes:          record.NewClasses(),
	}
}

// Empty reports whether the document held no objects.
func (s *Session) Empty() bool {
	return s.Classes.Total() == 0
}

// Lookup returns the record declared with id. The identifier is
// canonicalized first, so "#_a", "_a" and "a" find the same record.
func (s *Session) Lookup(id string) (*record.Record, error) {
	key, ok := canonical.Canonicalize(id)
	if !ok {
		return nil, fmt.Errorf("identifier %q: %w", id, cimflat.ErrObjectNotFound)
	}
	rec, ok := s.Index.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("identifier %q in %s: %w", id, s.Document, cimflat.ErrObjectNotFound)
	}
	return rec, nil
}

// ClassCount is the number of records of one class.
type ClassCount struct {
	Class   string `json:"class"`
	Records int    `json:"records"`
}

// ClassCounts lists classes in order of first appearance.
func (s *Session) ClassCounts() []ClassCount {
	names := s.Classes.Names()
	out := make([]ClassCount, len(names))
	for i, name := range names {
		out[i] = ClassCount{Class: name, Records: len(s.Classes.Records(name))}
	}
	return out
}
