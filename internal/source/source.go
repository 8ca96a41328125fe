// Package source locates the RDF/XML document a conversion reads.
//
// The input may be a zip archive, a directory or a single document. Archives
// and directories are searched for the first entry matching a doublestar
// pattern (default "**/*.xml"), in archive order or lexical order
// respectively. Matching ignores case, so "EQ.XML" is found as well.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"

	"github.com/vvka-141/cimflat/internal/files/filesystem"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// Kind tells how a document was found.
type Kind string

const (
	KindArchive   Kind = "zip"
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// Document is a located input document, fully read.
type Document struct {
	// Input is the path the user passed.
	Input string
	// Name is the document path relative to the input, or the file name for
	// single documents.
	Name string
	Kind Kind
	// Candidates counts entries that matched the pattern, the chosen one included.
	Candidates int
	Content    []byte
}

// Reader returns a fresh reader over the content.
func (d *Document) Reader() io.Reader {
	return bytes.NewReader(d.Content)
}

// String identifies the document in messages ("model.zip!EQ.xml").
func (d *Document) String() string {
	if d.Kind == KindArchive {
		return d.Input + "!" + d.Name
	}
	if d.Kind == KindDirectory {
		return path.Join(d.Input, d.Name)
	}
	return d.Input
}

// Locator finds documents through a filesystem provider.
type Locator struct {
	fs      filesystem.FileSystemProvider
	pattern string
}

// NewLocator creates a Locator. An empty pattern selects
// cimflat.DefaultDocumentPattern.
func NewLocator(fsys filesystem.FileSystemProvider, pattern string) (*Locator, error) {
	if pattern == "" {
		pattern = cimflat.DefaultDocumentPattern
	}
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("document pattern %q: %w", pattern, cimflat.ErrInvalidConfig)
	}
	return &Locator{fs: fsys, pattern: pattern}, nil
}

// Pattern returns the effective, lower-cased pattern.
func (l *Locator) Pattern() string {
	return l.pattern
}

// Matches reports whether an entry name selects as a document.
func (l *Locator) Matches(name string) bool {
	ok, err := doublestar.Match(l.pattern, strings.ToLower(name))
	return err == nil && ok
}

// Locate reads the document designated by input. Every failure wraps
// cimflat.ErrInputUnavailable.
func (l *Locator) Locate(input string) (*Document, error) {
	info, err := l.fs.Stat(input)
	if err != nil {
		return nil, unavailable(input, err)
	}

	var doc *Document
	switch {
	case info.IsDir():
		doc, err = l.fromDirectory(input)
	case strings.EqualFold(path.Ext(info.Name()), ".zip"):
		doc, err = l.fromArchive(input, info.Size())
	default:
		doc, err = l.fromFile(input, info.Name())
	}
	if err != nil {
		return nil, unavailable(input, err)
	}
	return doc, nil
}

func (l *Locator) fromFile(input, name string) (*Document, error) {
	content, err := l.readAll(input)
	if err != nil {
		return nil, err
	}
	return &Document{Input: input, Name: name, Kind: KindFile, Candidates: 1, Content: content}, nil
}

func (l *Locator) fromDirectory(input string) (*Document, error) {
	dir, err := l.fs.Open(input)
	if err != nil {
		return nil, err
	}

	var chosen filesystem.File
	candidates := 0
	err = dir.Walk(func(f filesystem.File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if f.Info().IsDir() || !l.Matches(f.RelativePath()) {
			return nil
		}
		candidates++
		if chosen == nil {
			chosen = f
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, fmt.Errorf("no entry matches %q", l.pattern)
	}

	content, err := l.readAll(chosen.Path())
	if err != nil {
		return nil, err
	}
	return &Document{
		Input:      input,
		Name:       chosen.RelativePath(),
		Kind:       KindDirectory,
		Candidates: candidates,
		Content:    content,
	}, nil
}

func (l *Locator) fromArchive(input string, size int64) (*Document, error) {
	f, err := l.fs.OpenFile(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zip.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var chosen *zip.File
	candidates := 0
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !l.Matches(entry.Name) {
			continue
		}
		candidates++
		if chosen == nil {
			chosen = entry
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("no archive entry matches %q", l.pattern)
	}

	rc, err := chosen.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", chosen.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", chosen.Name, err)
	}
	return &Document{
		Input:      input,
		Name:       chosen.Name,
		Kind:       KindArchive,
		Candidates: candidates,
		Content:    content,
	}, nil
}

func (l *Locator) readAll(p string) ([]byte, error) {
	f, err := l.fs.OpenFile(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func unavailable(input string, err error) error {
	if errors.Is(err, cimflat.ErrInputUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", input, cimflat.ErrInputUnavailable, err)
}
