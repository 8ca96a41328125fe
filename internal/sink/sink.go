// Package sink writes class tables to their destinations.
package sink

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/vvka-141/cimflat/internal/table"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// Sink writes one table at a time. Implementations are safe for concurrent
// Write calls on different tables.
type Sink interface {
	// Name identifies the sink in reports and metrics.
	Name() string
	Write(ctx context.Context, t *table.Table) (Report, error)
}

// Opener is implemented by sinks holding a connection. Open is called once
// before the first Write and Close after the last.
type Opener interface {
	Open(ctx context.Context) error
	Close() error
}

// Report describes one written table.
type Report struct {
	Sink     string
	Table    string
	Rows     int
	Location string
}

func (r Report) String() string {
	return fmt.Sprintf("Wrote %d rows -> %s", r.Rows, r.Location)
}

// Output file suffixes of the two views.
const (
	SuffixEnriched = "enriched"
	SuffixClean    = "clean"
)

// NewFile returns the file sink for format writing <dir>/<Class>_<suffix>.<format>.
func NewFile(fs afero.Fs, dir, suffix, format string) (Sink, error) {
	base := fileSink{fs: fs, dir: dir, suffix: suffix}
	switch format {
	case cimflat.FormatCSV:
		return &CSVSink{fileSink: base}, nil
	case cimflat.FormatXLSX:
		return &XLSXSink{fileSink: base}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q: %w", format, cimflat.ErrInvalidConfig)
	}
}

type fileSink struct {
	fs     afero.Fs
	dir    string
	suffix string
}

func (s fileSink) path(class, ext string) string {
	return filepath.Join(s.dir, fileSafe(class)+"_"+s.suffix+"."+ext)
}

// create opens the output file, creating the directory first.
func (s fileSink) create(path string) (afero.File, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", s.dir, err)
	}
	f, err := s.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// fileSafe maps a class name to a portable file name component.
func fileSafe(class string) string {
	name := unsafeFileChars.Replace(class)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
