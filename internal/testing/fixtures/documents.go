// Package fixtures provides CIM RDF/XML documents and inputs for tests.
package fixtures

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/vvka-141/cimflat/internal/files/filesystem"
)

const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	CIMNamespace = "http://iec.ch/TC57/CIM100#"
)

// Scenario holds one object referencing another and an unreferenced third.
const Scenario = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <Foo rdf:ID="_a"><Bar rdf:resource="#_b"/></Foo>
  <Baz rdf:ID="_b"><Qty>42</Qty></Baz>
  <Baz rdf:ID="_c"><Qty>7</Qty></Baz>
</rdf:RDF>`

// Substation is a small equipment profile: a breaker in a bay (declared
// through rdf:Description) of a substation in a region.
var Substation = NewDocument().
	Object("cim:Substation", "_sub1",
		Text("cim:IdentifiedObject.name", "North"),
		Text("cim:IdentifiedObject.mRID", "sub1-mrid"),
		Ref("cim:Substation.Region", "_reg1"),
	).
	Object("cim:SubGeographicalRegion", "_reg1",
		Text("cim:IdentifiedObject.name", "Region A"),
	).
	Description("Bay", "_bay1",
		Text("cim:IdentifiedObject.name", "Bay 1"),
		Ref("cim:Bay.Substation", "_sub1"),
	).
	Object("cim:Breaker", "_br1",
		Text("cim:IdentifiedObject.name", "BR 1"),
		Text("cim:Switch.normalOpen", "false"),
		Ref("cim:Equipment.EquipmentContainer", "_bay1"),
	).
	String()

// Child is one property element of an object.
type Child struct {
	Tag      string
	Text     string
	Resource string
}

// Text returns a literal property.
func Text(tag, text string) Child { return Child{Tag: tag, Text: text} }

// Ref returns a reference property pointing at "#<id>".
func Ref(tag, id string) Child { return Child{Tag: tag, Resource: "#" + id} }

// DocumentBuilder assembles an rdf:RDF document with the rdf and cim prefixes bound.
type DocumentBuilder struct {
	b bytes.Buffer
}

func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{}
}

// Object appends <tag rdf:ID="id"> with children.
func (d *DocumentBuilder) Object(tag, id string, children ...Child) *DocumentBuilder {
	fmt.Fprintf(&d.b, "  <%s rdf:ID=%q>\n", tag, id)
	d.children(children)
	fmt.Fprintf(&d.b, "  </%s>\n", tag)
	return d
}

// Description appends an rdf:Description typed as cim:<class>.
func (d *DocumentBuilder) Description(class, id string, children ...Child) *DocumentBuilder {
	typed := append([]Child{{Tag: "rdf:type", Resource: CIMNamespace + class}}, children...)
	return d.Object("rdf:Description", id, typed...)
}

func (d *DocumentBuilder) children(children []Child) {
	for _, c := range children {
		if c.Resource != "" {
			fmt.Fprintf(&d.b, "    <%s rdf:resource=%q/>\n", c.Tag, c.Resource)
			continue
		}
		fmt.Fprintf(&d.b, "    <%s>%s</%s>\n", c.Tag, html.EscapeString(c.Text), c.Tag)
	}
}

// String returns the complete document.
func (d *DocumentBuilder) String() string {
	var out strings.Builder
	out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&out, "<rdf:RDF xmlns:rdf=%q xmlns:cim=%q>\n", RDFNamespace, CIMNamespace)
	out.Write(d.b.Bytes())
	out.WriteString("</rdf:RDF>\n")
	return out.String()
}

// Entry is one archive member.
type Entry struct {
	Name    string
	Content string
}

// Archive returns a zip holding entries in the given order.
func Archive(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileSystem returns an in-memory file system rooted at root holding files.
func FileSystem(root string, files map[string][]byte) *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem(root)
	for name, content := range files {
		mfs.AddBytes(name, content)
	}
	return mfs
}
