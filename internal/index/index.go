// Package index maps canonical identifiers to extracted records.
package index

import (
	"sync"

	"github.com/vvka-141/cimflat/internal/record"
)

// Index is the canonical identifier index of one conversion session.
//
// When two declarations canonicalize to the same identifier the record that was
// put last wins. This is a deliberate approximation; collisions are counted so
// they can be reported.
//
// Index is safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	entries    map[string]*record.Record
	collisions int
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: make(map[string]*record.Record)}
}

// Put stores rec under id and returns the record it replaced, if any.
func (x *Index) Put(id string, rec *record.Record) *record.Record {
	x.mu.Lock()
	defer x.mu.Unlock()
	prev := x.entries[id]
	if prev != nil && prev != rec {
		x.collisions++
	}
	x.entries[id] = rec
	return prev
}

// Lookup returns the record stored under id.
func (x *Index) Lookup(id string) (*record.Record, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rec, ok := x.entries[id]
	return rec, ok
}

// Len returns the number of distinct identifiers.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Collisions returns how many times Put replaced a different record.
func (x *Index) Collisions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collisions
}
