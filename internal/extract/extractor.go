package extract

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/cimflat/internal/canonical"
	"github.com/vvka-141/cimflat/internal/index"
	"github.com/vvka-141/cimflat/internal/record"
	"github.com/vvka-141/cimflat/internal/xmltree"
)

// Options configures the reserved names the extractor looks for.
type Options struct {
	// IDAttribute is the local name of the declared identifier attribute.
	IDAttribute string
	// AboutAttribute is the local name of the alternate identifier attribute.
	AboutAttribute string
	// AcceptAbout enables AboutAttribute as an identifier source for elements
	// that carry no IDAttribute.
	AcceptAbout bool
	// WrapperTag is the generic element whose class is given by a child TypeTag.
	WrapperTag string
	// TypeTag is the child element naming the class of a WrapperTag element.
	TypeTag string
	// ReferenceAttribute is the attribute of TypeTag holding the class URI.
	ReferenceAttribute string
	// Workers bounds concurrent subtree extraction. Values below 2 extract
	// sequentially.
	Workers int
}

// DefaultOptions returns the RDF/XML conventions used by CIM documents.
func DefaultOptions() Options {
	return Options{
		IDAttribute:        "ID",
		AboutAttribute:     "about",
		WrapperTag:         "Description",
		TypeTag:            "type",
		ReferenceAttribute: "resource",
		Workers:            1,
	}
}

// Extractor turns an element tree into class-grouped records.
// It is stateless and safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an extractor. Empty reserved names fall back to DefaultOptions.
func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.IDAttribute == "" {
		opts.IDAttribute = def.IDAttribute
	}
	if opts.AboutAttribute == "" {
		opts.AboutAttribute = def.AboutAttribute
	}
	if opts.WrapperTag == "" {
		opts.WrapperTag = def.WrapperTag
	}
	if opts.TypeTag == "" {
		opts.TypeTag = def.TypeTag
	}
	if opts.ReferenceAttribute == "" {
		opts.ReferenceAttribute = def.ReferenceAttribute
	}
	return &Extractor{opts: opts}
}

// Options returns the effective configuration.
func (e *Extractor) Options() Options {
	return e.opts
}

// indexEntry is a pending identifier index insertion.
type indexEntry struct {
	id  string
	rec *record.Record
}

// fragment holds the extraction output of one subtree.
type fragment struct {
	classes *record.Classes
	entries []indexEntry
}

func newFragment() *fragment {
	return &fragment{classes: record.NewClasses()}
}

// Extract walks root in document order and returns every object as a record,
// grouped by class. Each record with a canonical identifier is put into idx;
// identifiers that collide resolve to the record encountered last.
//
// The only error returned is the context's.
func (e *Extractor) Extract(ctx context.Context, root *xmltree.Element, idx *index.Index) (*record.Classes, error) {
	result := newFragment()
	if root == nil {
		return result.classes, nil
	}

	e.visit(root, result)

	if e.opts.Workers < 2 || len(root.Children) < 2 {
		for _, child := range root.Children {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.walk(child, result)
		}
	} else {
		shards := make([]*fragment, len(root.Children))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)
		for i, child := range root.Children {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				shard := newFragment()
				e.walk(child, shard)
				shards[i] = shard
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, shard := range shards {
			result.classes.Merge(shard.classes)
			result.entries = append(result.entries, shard.entries...)
		}
	}

	for _, entry := range result.entries {
		idx.Put(entry.id, entry.rec)
	}
	return result.classes, nil
}

// walk extracts el and its descendants in pre-order into out.
func (e *Extractor) walk(el *xmltree.Element, out *fragment) {
	el.Walk(func(node *xmltree.Element) bool {
		e.visit(node, out)
		return true
	})
}

// visit extracts a single element, ignoring its descendants.
func (e *Extractor) visit(el *xmltree.Element, out *fragment) {
	c := e.Classify(el)
	if !c.IsObject() {
		return
	}
	rec := e.buildRecord(el, c)
	out.classes.Add(c.Class, rec)
	if id, ok := canonical.Canonicalize(c.DeclaredID); ok {
		out.entries = append(out.entries, indexEntry{id: id, rec: rec})
	}
}

// buildRecord flattens an object element.
//
// Field naming:
//   - xml_tag, declared_id: reserved, written first
//   - @<attr>: attributes of the element itself, identifier excluded
//   - <child>: trimmed, non-blank text of a direct child
//   - <child>__<attr>: attribute of a direct child
//
// Duplicate names resolve to the last occurrence in document order.
func (e *Extractor) buildRecord(el *xmltree.Element, c Classification) *record.Record {
	rec := record.New()
	rec.Set(record.FieldXMLTag, el.Name.Local)
	rec.Set(record.FieldDeclaredID, c.DeclaredID)

	for _, a := range el.Attrs {
		if a.Name.Local == e.opts.IDAttribute || a.Name.Local == c.IDAttr {
			continue
		}
		rec.Set("@"+a.Name.Local, a.Value)
	}

	for _, child := range el.Children {
		name := child.Name.Local
		if text := strings.TrimSpace(child.Text); text != "" {
			setChildField(rec, name, text)
		}
		for _, a := range child.Attrs {
			setChildField(rec, name+record.Separator+a.Name.Local, a.Value)
		}
	}
	return rec
}

// setChildField writes a child-derived field unless it would shadow a
// reserved field.
func setChildField(rec *record.Record, name, value string) {
	if record.IsProtected(name) {
		return
	}
	rec.Set(name, value)
}
