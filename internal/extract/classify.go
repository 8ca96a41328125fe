package extract

import (
	"github.com/vvka-141/cimflat/internal/canonical"
	"github.com/vvka-141/cimflat/internal/xmltree"
)

// Kind tells whether an element is an object.
type Kind int

const (
	// KindNotObject marks elements without a declared identifier.
	KindNotObject Kind = iota
	// KindObject marks elements that become records.
	KindObject
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindObject {
		return "object"
	}
	return "not-object"
}

// Classification is the result of inspecting one element.
// Class, DeclaredID and IDAttr are only set for KindObject.
type Classification struct {
	Kind       Kind
	Class      string
	DeclaredID string
	// IDAttr is the local name of the attribute the identifier came from.
	IDAttr string
}

// IsObject reports whether the element should become a record.
func (c Classification) IsObject() bool {
	return c.Kind == KindObject
}

// Classify decides whether el is an object and, if so, which class it belongs to.
func (e *Extractor) Classify(el *xmltree.Element) Classification {
	id, attr, ok := e.declaredID(el)
	if !ok {
		return Classification{Kind: KindNotObject}
	}
	return Classification{
		Kind:       KindObject,
		Class:      e.className(el),
		DeclaredID: id,
		IDAttr:     attr,
	}
}

// declaredID finds the identifier attribute. The primary attribute always wins;
// the alternate "about" form is only consulted when enabled and the primary is
// missing or empty.
func (e *Extractor) declaredID(el *xmltree.Element) (value, attr string, ok bool) {
	if v, found := el.Attr(e.opts.IDAttribute); found && v != "" {
		return v, e.opts.IDAttribute, true
	}
	if e.opts.AcceptAbout {
		if v, found := el.Attr(e.opts.AboutAttribute); found && v != "" {
			return v, e.opts.AboutAttribute, true
		}
	}
	return "", "", false
}

// className returns the element's own local tag, except for the generic
// wrapper whose class is carried by a child type marker.
func (e *Extractor) className(el *xmltree.Element) string {
	tag := el.Name.Local
	if tag != e.opts.WrapperTag {
		return tag
	}
	for _, child := range el.Children {
		if child.Name.Local != e.opts.TypeTag {
			continue
		}
		ref, ok := child.Attr(e.opts.ReferenceAttribute)
		if !ok || ref == "" {
			continue
		}
		if class := canonical.FragmentSuffix(ref); class != "" {
			return class
		}
	}
	return e.opts.WrapperTag
}
