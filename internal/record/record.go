// Package record provides the flat, ordered field record that every extracted
// object is turned into, and the per-class grouping of those records.
package record

// Reserved field names. They are written once by the extractor and are never
// overwritten or inlined into other records.
const (
	FieldXMLTag     = "xml_tag"
	FieldDeclaredID = "declared_id"
)

// Separator joins a field prefix and a field name ("Terminal__resource").
const Separator = "__"

// IsProtected reports whether name belongs to the reserved namespace.
func IsProtected(name string) bool {
	return name == FieldXMLTag || name == FieldDeclaredID
}

// Field is a single name/value pair.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered mapping from field name to value.
//
// Field names are unique. Insertion order is preserved; overwriting an existing
// field keeps its original position. Inlined fields remember the records their
// value travelled through (see Via).
//
// A Record is not safe for concurrent mutation. Concurrent reads are safe.
type Record struct {
	names  []string
	values map[string]string
	via    map[string][]*Record
}

// New creates an empty record.
func New() *Record {
	return &Record{values: make(map[string]string)}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.names)
}

// Get returns the value of name and whether it is present.
func (r *Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value of name or "" when absent.
func (r *Record) Value(name string) string {
	return r.values[name]
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Set stores value under name. An existing value is replaced in place, so the
// last write wins while the field keeps the position of its first write.
func (r *Record) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// SetIfAbsent stores value only when name is not present yet.
// It reports whether the field was inserted.
func (r *Record) SetIfAbsent(name, value string) bool {
	if _, ok := r.values[name]; ok {
		return false
	}
	r.names = append(r.names, name)
	r.values[name] = value
	return true
}

// Inline inserts a field copied from another record. via lists the records the
// value came through, nearest first. Existing fields are never replaced.
func (r *Record) Inline(name, value string, via []*Record) bool {
	if !r.SetIfAbsent(name, value) {
		return false
	}
	if len(via) > 0 {
		if r.via == nil {
			r.via = make(map[string][]*Record)
		}
		r.via[name] = via
	}
	return true
}

// Via returns the records an inlined field travelled through, nearest first.
// Fields produced by extraction return nil. The slice must not be modified.
func (r *Record) Via(name string) []*Record {
	return r.via[name]
}

// Names returns a copy of the field names in order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Fields returns a copy of all fields in order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.names))
	for i, name := range r.names {
		out[i] = Field{Name: name, Value: r.values[name]}
	}
	return out
}

// Range calls fn for every field in order until fn returns false.
// The record must not be mutated from within fn.
func (r *Record) Range(fn func(name, value string) bool) {
	for _, name := range r.names {
		if !fn(name, r.values[name]) {
			return
		}
	}
}

// Map returns the fields as an unordered map copy.
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the field data. Provenance is shared by
// reference since the referenced records are not copied.
func (r *Record) Clone() *Record {
	c := &Record{
		names:  make([]string, len(r.names)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.names, r.names)
	for k, v := range r.values {
		c.values[k] = v
	}
	if len(r.via) > 0 {
		c.via = make(map[string][]*Record, len(r.via))
		for k, v := range r.via {
			c.via[k] = v
		}
	}
	return c
}

// Filter returns a new record holding the fields for which keep returns true.
// The receiver is left untouched.
func (r *Record) Filter(keep func(name string) bool) *Record {
	out := New()
	for _, name := range r.names {
		if keep(name) {
			out.names = append(out.names, name)
			out.values[name] = r.values[name]
		}
	}
	return out
}

// Equal reports whether both records hold the same fields in the same order.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.names) != len(other.names) {
		return false
	}
	for i, name := range r.names {
		if other.names[i] != name || other.values[name] != r.values[name] {
			return false
		}
	}
	return true
}
