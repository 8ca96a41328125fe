package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/vvka-141/cimflat/internal/metrics"
	"github.com/vvka-141/cimflat/internal/sink"
	"github.com/vvka-141/cimflat/internal/table"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// writer fans tables out to sinks and collects every failure.
type writer struct {
	logger  cimflat.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	errs *multierror.Error
}

func (w *writer) fail(s sink.Sink, err error) {
	w.metrics.RecordSinkFailure(s.Name())
	w.mu.Lock()
	w.errs = multierror.Append(w.errs, err)
	w.mu.Unlock()
}

// writeAll writes tables to s in order. A table that fails does not stop
// the following ones; a sink that cannot be opened fails as a whole.
func (w *writer) writeAll(ctx context.Context, s sink.Sink, tables []*table.Table) []sink.Report {
	if o, ok := s.(sink.Opener); ok {
		if err := o.Open(ctx); err != nil {
			w.fail(s, fmt.Errorf("%s: %w", s.Name(), err))
			return nil
		}
		defer func() {
			if err := o.Close(); err != nil {
				w.logger.Verbose("%s: close: %v", s.Name(), err)
			}
		}()
	}

	reports := make([]sink.Report, 0, len(tables))
	for _, t := range tables {
		rep, err := s.Write(ctx, t)
		if err != nil {
			w.logger.Error("%s: %s: %v", s.Name(), t.Name, err)
			w.fail(s, fmt.Errorf("%s: table %s: %w", s.Name(), t.Name, err))
			continue
		}
		w.metrics.RecordRows(s.Name(), rep.Rows)
		w.logger.Verbose("%s: %s", s.Name(), rep)
		reports = append(reports, rep)
	}
	return reports
}
