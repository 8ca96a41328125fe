// Package clean derives the reduced "clean" view of a record: the fields a
// reader of the tables cares about, without identifiers, raw attributes or
// reference plumbing.
package clean

import (
	"strings"

	"github.com/vvka-141/cimflat/internal/record"
)

const (
	attributePrefix = "@"
	resourceSuffix  = record.Separator + "resource"
	mridSuffix      = "mrid"
)

// Drop reports whether a field is excluded from the clean view:
// declared_id, "@" attributes, "__resource" references and any name ending
// in "mrid" regardless of case.
func Drop(name string) bool {
	switch {
	case name == record.FieldDeclaredID:
		return true
	case strings.HasPrefix(name, attributePrefix):
		return true
	case strings.HasSuffix(name, resourceSuffix):
		return true
	case strings.HasSuffix(strings.ToLower(name), mridSuffix):
		return true
	}
	return false
}

// Keep is the negation of Drop.
func Keep(name string) bool {
	return !Drop(name)
}

// Filter returns a new record holding the fields of rec that survive Drop,
// in their original order. rec is not modified.
func Filter(rec *record.Record) *record.Record {
	return rec.Filter(Keep)
}

// Classes applies Filter to every record, preserving class and record order.
func Classes(in *record.Classes) *record.Classes {
	out := record.NewClasses()
	for _, class := range in.Names() {
		for _, rec := range in.Records(class) {
			out.Add(class, Filter(rec))
		}
	}
	return out
}
