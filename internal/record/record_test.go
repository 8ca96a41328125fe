package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsFirstPositionLastValue(t *testing.T) {
	r := New()
	r.Set("a", "1")
	r.Set("b", "2")
	r.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, "3", r.Value("a"))
	assert.Equal(t, 2, r.Len())
}

func TestRecord_SetIfAbsentNeverOverwrites(t *testing.T) {
	r := New()
	assert.True(t, r.SetIfAbsent("a", "1"))
	assert.False(t, r.SetIfAbsent("a", "2"))
	assert.Equal(t, "1", r.Value("a"))
}

func TestRecord_InlineTracksProvenance(t *testing.T) {
	src := New()
	hop := New()
	src.Set("Bar__resource", "#_b")

	require.True(t, src.Inline("Bar__Qty", "42", []*Record{hop}))
	assert.False(t, src.Inline("Bar__Qty", "7", []*Record{hop}))

	assert.Equal(t, "42", src.Value("Bar__Qty"))
	require.Len(t, src.Via("Bar__Qty"), 1)
	assert.Same(t, hop, src.Via("Bar__Qty")[0])
	assert.Nil(t, src.Via("Bar__resource"))
}

func TestRecord_FieldsAndRange(t *testing.T) {
	r := New()
	r.Set(FieldXMLTag, "Foo")
	r.Set(FieldDeclaredID, "_a")
	r.Set("Bar__resource", "#_b")

	want := []Field{
		{Name: FieldXMLTag, Value: "Foo"},
		{Name: FieldDeclaredID, Value: "_a"},
		{Name: "Bar__resource", Value: "#_b"},
	}
	if diff := cmp.Diff(want, r.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}

	var seen []string
	r.Range(func(name, _ string) bool {
		seen = append(seen, name)
		return name != FieldDeclaredID
	})
	assert.Equal(t, []string{FieldXMLTag, FieldDeclaredID}, seen)
}

func TestRecord_FilterLeavesSourceUntouched(t *testing.T) {
	r := New()
	r.Set("keep", "1")
	r.Set("drop", "2")

	out := r.Filter(func(name string) bool { return name == "keep" })

	assert.Equal(t, []string{"keep"}, out.Names())
	assert.Equal(t, []string{"keep", "drop"}, r.Names())
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := New()
	r.Set("a", "1")
	c := r.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	assert.Equal(t, "1", r.Value("a"))
	assert.False(t, r.Has("b"))
	assert.True(t, r.Equal(New().withFields("a", "1")))
}

func TestRecord_Equal(t *testing.T) {
	a := New().withFields("x", "1", "y", "2")
	b := New().withFields("x", "1", "y", "2")
	c := New().withFields("y", "2", "x", "1")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "order matters")
	assert.False(t, a.Equal(nil))
	var nilRec *Record
	assert.True(t, nilRec.Equal(nil))
}

func TestIsProtected(t *testing.T) {
	assert.True(t, IsProtected(FieldXMLTag))
	assert.True(t, IsProtected(FieldDeclaredID))
	assert.False(t, IsProtected("@about"))
}

func TestClasses_OrderAndCounts(t *testing.T) {
	c := NewClasses()
	a, b, d := New(), New(), New()
	c.Add("Baz", a)
	c.Add("Foo", b)
	c.Add("Baz", d)

	assert.Equal(t, []string{"Baz", "Foo"}, c.Names())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Total())
	assert.Equal(t, map[string]int{"Baz": 2, "Foo": 1}, c.Counts())
	assert.Equal(t, []*Record{a, d, b}, c.All())
	assert.Empty(t, c.Records("Missing"))
}

func TestClasses_Merge(t *testing.T) {
	first := NewClasses()
	second := NewClasses()
	a, b, d := New(), New(), New()
	first.Add("X", a)
	second.Add("Y", b)
	second.Add("X", d)

	first.Merge(second)

	assert.Equal(t, []string{"X", "Y"}, first.Names())
	assert.Equal(t, []*Record{a, d}, first.Records("X"))
}

func (r *Record) withFields(kv ...string) *Record {
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}
