package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/xsd/pkg/xmlstream"
	"github.com/jacoelho/xsd/pkg/xmltext"
	"golang.org/x/net/html/charset"
)

// Backend selects the XML parser used to build the tree.
type Backend string

const (
	BackendXMLStream Backend = "xmlstream"
	BackendStdlib    Backend = "encoding/xml"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendXMLStream

// ErrUnclosedElement is returned when the input ends inside an element.
var ErrUnclosedElement = errors.New("document ends inside an element")

// ErrNoRootElement is returned for input that holds no element at all.
var ErrNoRootElement = errors.New("document has no root element")

// ParseBackend validates a backend name. An empty name selects DefaultBackend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case "":
		return DefaultBackend, nil
	case BackendXMLStream, BackendStdlib:
		return Backend(name), nil
	default:
		return "", fmt.Errorf("unknown parser backend %q (expected %q or %q)", name, BackendXMLStream, BackendStdlib)
	}
}

// Parse reads a whole document from r and returns its root element.
// document names the input in error messages.
func Parse(r io.Reader, backend Backend, document string) (*Element, error) {
	var (
		root *Element
		err  error
	)
	switch backend {
	case BackendXMLStream, "":
		root, err = parseStream(r)
	case BackendStdlib:
		root, err = parseStdlib(r)
	default:
		return nil, fmt.Errorf("unknown parser backend %q", backend)
	}
	if err != nil {
		return nil, wrapParseError(err, document)
	}
	if root == nil {
		return nil, &DocumentError{Document: document, Message: ErrNoRootElement.Error(), Err: ErrNoRootElement}
	}
	return root, nil
}

// builder assembles elements from start/end/text events.
type builder struct {
	root  *Element
	stack []*Element
	text  [][]byte
}

func (b *builder) start(el *Element) {
	if n := len(b.stack); n > 0 {
		parent := b.stack[n-1]
		if len(parent.Children) == 0 {
			parent.Text = string(b.text[n-1])
		}
		parent.Children = append(parent.Children, el)
	} else if b.root == nil {
		b.root = el
	}
	b.stack = append(b.stack, el)
	b.text = append(b.text, nil)
}

func (b *builder) chars(data []byte) {
	n := len(b.stack)
	if n == 0 {
		return
	}
	// Only text before the first child element counts as the element's text.
	if len(b.stack[n-1].Children) > 0 {
		return
	}
	b.text[n-1] = append(b.text[n-1], data...)
}

// finish returns the root once every element was closed.
func (b *builder) finish() (*Element, error) {
	if len(b.stack) > 0 {
		return nil, fmt.Errorf("%w <%s>", ErrUnclosedElement, b.stack[len(b.stack)-1].Name.Local)
	}
	return b.root, nil
}

func (b *builder) end() {
	n := len(b.stack)
	if n == 0 {
		return
	}
	el := b.stack[n-1]
	if len(el.Children) == 0 {
		el.Text = string(b.text[n-1])
	}
	b.stack = b.stack[:n-1]
	b.text = b.text[:n-1]
}

func parseStream(r io.Reader) (*Element, error) {
	reader, err := xmlstream.NewReader(r, xmltext.WithCharsetReader(charset.NewReaderLabel))
	if err != nil {
		return nil, err
	}

	var b builder
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case xmlstream.EventStartElement:
			el := &Element{
				Name: Name{Space: ev.Name.Namespace, Local: ev.Name.Local},
				Line: ev.Line,
			}
			for _, a := range ev.Attrs {
				if a.Name.Namespace == xmlstream.XMLNSNamespace {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{
					Name:  Name{Space: a.Name.Namespace, Local: a.Name.Local},
					Value: string(a.Value),
				})
			}
			b.start(el)
		case xmlstream.EventEndElement:
			b.end()
		case xmlstream.EventCharData:
			b.chars(ev.Text)
		}
	}
	return b.finish()
}

func parseStdlib(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var b builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			el := &Element{
				Name: Name{Space: t.Name.Space, Local: t.Name.Local},
				Line: line,
			}
			for _, a := range t.Attr {
				if isNamespaceDecl(a.Name) {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{
					Name:  Name{Space: a.Name.Space, Local: a.Name.Local},
					Value: a.Value,
				})
			}
			b.start(el)
		case xml.EndElement:
			b.end()
		case xml.CharData:
			b.chars(t)
		}
	}
	return b.finish()
}

// isNamespaceDecl reports whether a translated encoding/xml attribute name is
// an xmlns declaration.
func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
