// Package xmltree builds an in-memory element tree from an XML document.
//
// The tree keeps what object extraction needs and nothing more: resolved
// element and attribute names, attributes in document order, children in
// document order and the character data that precedes the first child
// element. Namespace declarations are consumed by the parser and never show
// up as attributes.
//
// Two parser backends produce identical trees:
//   - BackendXMLStream: github.com/jacoelho/xsd/pkg/xmlstream (default)
//   - BackendStdlib: encoding/xml
package xmltree

// Name is a namespace-resolved XML name.
type Name struct {
	Space string
	Local string
}

// String renders the name in Clark notation.
func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// Attr is a single attribute.
type Attr struct {
	Name  Name
	Value string
}

// Element is a node of the tree.
type Element struct {
	Name     Name
	Attrs    []Attr
	Text     string // character data before the first child element, untrimmed
	Children []*Element
	Line     int
}

// Attr returns the value of the first attribute whose local name is local,
// regardless of namespace.
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Walk visits e and all of its descendants in document (pre-)order.
// Returning false from fn stops the walk.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of elements in the subtree rooted at e.
func (e *Element) Count() int {
	n := 0
	e.Walk(func(*Element) bool {
		n++
		return true
	})
	return n
}
