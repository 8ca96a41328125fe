package sink

import (
	"context"
	"encoding/csv"
	"fmt"

	"github.com/vvka-141/cimflat/internal/table"
)

// CSVSink writes RFC 4180 files with a header row. Absent cells are empty.
type CSVSink struct {
	fileSink
}

func (s *CSVSink) Name() string { return "csv:" + s.suffix }

func (s *CSVSink) Write(ctx context.Context, t *table.Table) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	path := s.path(t.Name, "csv")
	f, err := s.create(path)
	if err != nil {
		return Report{}, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		f.Close()
		return Report{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return Report{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Report{}, fmt.Errorf("close %s: %w", path, err)
	}

	return Report{Sink: s.Name(), Table: t.Name, Rows: t.Len(), Location: path}, nil
}
