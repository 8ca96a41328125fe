package canonical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "empty", input: "", want: "", wantOK: false},
		{name: "plain", input: "abc", want: "abc", wantOK: true},
		{name: "hash underscore", input: "#_abc", want: "abc", wantOK: true},
		{name: "hash only", input: "#abc", want: "abc", wantOK: true},
		{name: "underscore only", input: "_abc", want: "abc", wantOK: true},
		{name: "bare hash", input: "#", want: "", wantOK: false},
		{name: "bare hash underscore", input: "#_", want: "", wantOK: false},
		{name: "bare underscore", input: "_", want: "", wantOK: false},
		{name: "double underscore keeps one", input: "__abc", want: "_abc", wantOK: true},
		{name: "hash underscore underscore", input: "#__abc", want: "abc", wantOK: true},
		{name: "uuid", input: "#_2b1f6c1e-8c3a-4f43-9f6e-2a7a9c8d0e11", want: "2b1f6c1e-8c3a-4f43-9f6e-2a7a9c8d0e11", wantOK: true},
		{name: "inner markers untouched", input: "a#_b", want: "a#_b", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Canonicalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCanonicalize_EquivalentForms(t *testing.T) {
	a, _ := Canonicalize("#_abc")
	b, _ := Canonicalize(strings.Replace("#abc", "#", "#_", 1))
	c, _ := Canonicalize("abc")
	assert.Equal(t, "abc", a)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{"abc", "#_abc", "#abc", "_abc", "x_y", "#_A-1", "_0"}
	for _, in := range inputs {
		once, ok := Canonicalize(in)
		if !ok || strings.HasPrefix(once, "#") || strings.HasPrefix(once, "_") {
			continue
		}
		twice, ok2 := Canonicalize(once)
		assert.True(t, ok2, "input %q", in)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func FuzzCanonicalize(f *testing.F) {
	for _, seed := range []string{"", "#", "#_", "_", "#_abc", "abc", "__", "#__x"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		out, ok := Canonicalize(s)
		if ok && out == "" {
			t.Fatalf("Canonicalize(%q) reported ok with empty output", s)
		}
		if !ok && out != "" {
			t.Fatalf("Canonicalize(%q) returned %q without ok", s, out)
		}
		if ok && !strings.HasSuffix(s, out) {
			t.Fatalf("Canonicalize(%q) = %q is not a suffix of the input", s, out)
		}
	})
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "ACLineSegment", LocalName("{http://iec.ch/TC57/CIM100#}ACLineSegment"))
	assert.Equal(t, "ID", LocalName("rdf:ID"))
	assert.Equal(t, "Terminal", LocalName("Terminal"))
	assert.Equal(t, "", LocalName(""))
}

func TestFragmentSuffix(t *testing.T) {
	assert.Equal(t, "Breaker", FragmentSuffix("http://iec.ch/TC57/CIM100#Breaker"))
	assert.Equal(t, "Breaker", FragmentSuffix("a#b#Breaker"))
	assert.Equal(t, "Breaker", FragmentSuffix("Breaker"))
	assert.Equal(t, "", FragmentSuffix("http://x#"))
}
