package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/cimflat/internal/checksum"
	"github.com/vvka-141/cimflat/internal/clean"
	"github.com/vvka-141/cimflat/internal/extract"
	"github.com/vvka-141/cimflat/internal/files/filesystem"
	"github.com/vvka-141/cimflat/internal/metrics"
	"github.com/vvka-141/cimflat/internal/resolve"
	"github.com/vvka-141/cimflat/internal/sink"
	"github.com/vvka-141/cimflat/internal/source"
	"github.com/vvka-141/cimflat/internal/table"
	"github.com/vvka-141/cimflat/internal/xmltree"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// TracerName identifies the spans of the conversion pipeline.
const TracerName = "github.com/vvka-141/cimflat/internal/services"

// Pipeline stages, in execution order.
const (
	StageLocate  = "locate"
	StageParse   = "parse"
	StageExtract = "extract"
	StageResolve = "resolve"
	StageWrite   = "write"
)

// Options configures a Converter.
type Options struct {
	// Pattern selects the document inside archives and directories.
	Pattern string
	Backend xmltree.Backend
	Extract extract.Options
	Resolve resolve.Options
}

// DefaultOptions returns the settings used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Pattern: cimflat.DefaultDocumentPattern,
		Backend: xmltree.DefaultBackend,
		Extract: extract.DefaultOptions(),
		Resolve: resolve.DefaultOptions(),
	}
}

// Outputs are the sinks of the two views. Enriched sinks receive the full
// records, Clean sinks the filtered view.
type Outputs struct {
	Enriched []sink.Sink
	Clean    []sink.Sink
}

// Result is the outcome of Convert.
type Result struct {
	Session *Session
	Reports []sink.Report
}

// Empty reports whether nothing was extracted. Nothing is written then.
func (r *Result) Empty() bool {
	return r.Session == nil || r.Session.Empty()
}

// Converter runs the pipeline locate, parse, extract, resolve and write.
//
// Converter is safe for concurrent use; every call builds its own Session.
type Converter struct {
	fs      filesystem.FileSystemProvider
	opts    Options
	logger  cimflat.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	// checksums digests the document of every session.
	checksums checksum.Calculator

	// OnStage, when set, is called as each stage starts.
	OnStage func(stage string)
}

// NewConverter creates a Converter. m may be nil.
//
// Panics if fs or logger is nil.
func NewConverter(fs filesystem.FileSystemProvider, opts Options, logger cimflat.Logger, m *metrics.Metrics) *Converter {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Converter{
		fs:      fs,
		opts:    opts,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer(TracerName),

		checksums: checksum.New(),
	}
}

// WithTracer replaces the tracer obtained from the global provider.
func (c *Converter) WithTracer(tracer trace.Tracer) *Converter {
	c.tracer = tracer
	return c
}

// Load locates, parses, extracts and resolves input. Failures to find or
// parse the document wrap cimflat.ErrInputUnavailable.
func (c *Converter) Load(ctx context.Context, input string) (*Session, error) {
	ctx, span := c.tracer.Start(ctx, "cimflat.load", trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	session, err := c.load(ctx, input)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", session.ID.String()))
	return session, nil
}

func (c *Converter) load(ctx context.Context, input string) (*Session, error) {
	locator, err := source.NewLocator(c.fs, c.opts.Pattern)
	if err != nil {
		return nil, err
	}

	var doc *source.Document
	err = c.stage(ctx, StageLocate, func(_ context.Context, span trace.Span) error {
		doc, err = locator.Locate(input)
		if err != nil {
			return err
		}
		span.SetAttributes(
			attribute.String("document", doc.String()),
			attribute.Int("document.bytes", len(doc.Content)),
			attribute.Int("document.candidates", doc.Candidates),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if doc.Candidates > 1 {
		c.logger.Verbose("%d documents match %q, using %s", doc.Candidates, locator.Pattern(), doc.Name)
	}

	session := newSession(doc, c.checksums)
	c.logger.Verbose("Session %s reading %s (sha256 %s)", session.ID, doc, session.Digest)

	var root *xmltree.Element
	err = c.stage(ctx, StageParse, func(_ context.Context, span trace.Span) error {
		root, err = xmltree.Parse(doc.Reader(), c.opts.Backend, doc.String())
		if err != nil {
			return fmt.Errorf("%w: %w", cimflat.ErrInputUnavailable, err)
		}
		span.SetAttributes(attribute.Int("elements", root.Count()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.stage(ctx, StageExtract, func(ctx context.Context, span trace.Span) error {
		classes, err := extract.New(c.opts.Extract).Extract(ctx, root, session.Index)
		if err != nil {
			return err
		}
		session.Classes = classes
		for _, cc := range session.ClassCounts() {
			c.metrics.RecordExtracted(cc.Class, cc.Records)
		}
		c.metrics.RecordCollisions(session.Index.Collisions())
		span.SetAttributes(
			attribute.Int("classes", classes.Len()),
			attribute.Int("records", classes.Total()),
			attribute.Int("identifiers", session.Index.Len()),
			attribute.Int("collisions", session.Index.Collisions()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Verbose("Extracted %d objects in %d classes", session.Classes.Total(), session.Classes.Len())
	if session.Index.Collisions() > 0 {
		c.logger.Info("Warning: %d identifiers were declared more than once, the last declaration wins", session.Index.Collisions())
	}

	if session.Empty() {
		return session, nil
	}

	err = c.stage(ctx, StageResolve, func(ctx context.Context, span trace.Span) error {
		stats, err := resolve.New(session.Index, c.opts.Resolve, c.logger, c.metrics).Resolve(ctx, session.Classes)
		if err != nil {
			return err
		}
		session.Stats = stats
		span.SetAttributes(
			attribute.Int("passes", stats.Passes),
			attribute.Int("inserted", stats.TotalInserted()),
			attribute.Int("unresolved", stats.Unresolved),
			attribute.Bool("converged", stats.Converged),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Verbose("Resolution: %s", session.Stats)
	if !session.Stats.Converged {
		c.logger.Info("Warning: resolution stopped after %d passes without converging", session.Stats.Passes)
	}

	return session, nil
}

// Convert loads input and writes both views to outputs. Every table is
// attempted on every sink; failures are collected and returned together,
// wrapped in cimflat.ErrSinkFailed. The Result is returned even then.
func (c *Converter) Convert(ctx context.Context, input string, outputs Outputs) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "cimflat.convert", trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	session, err := c.Load(ctx, input)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	result := &Result{Session: session}
	if session.Empty() {
		c.logger.Verbose("No objects extracted, nothing to write")
		return result, nil
	}

	err = c.stage(ctx, StageWrite, func(ctx context.Context, span trace.Span) error {
		enriched := table.FromClasses(session.Classes)
		var cleaned []*table.Table
		if len(outputs.Clean) > 0 {
			cleaned = table.FromClasses(clean.Classes(session.Classes))
		}

		type job struct {
			sink   sink.Sink
			tables []*table.Table
		}
		var jobs []job
		for _, s := range outputs.Enriched {
			jobs = append(jobs, job{s, enriched})
		}
		for _, s := range outputs.Clean {
			jobs = append(jobs, job{s, cleaned})
		}

		w := &writer{logger: c.logger, metrics: c.metrics}
		reports := make([][]sink.Report, len(jobs))
		var g errgroup.Group
		for i, j := range jobs {
			g.Go(func() error {
				reports[i] = w.writeAll(ctx, j.sink, j.tables)
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range reports {
			result.Reports = append(result.Reports, r...)
		}
		span.SetAttributes(attribute.Int("reports", len(result.Reports)))
		if err := w.errs.ErrorOrNil(); err != nil {
			return fmt.Errorf("%w: %w", cimflat.ErrSinkFailed, err)
		}
		return nil
	})
	if err != nil {
		fail(span, err)
		return result, err
	}
	return result, nil
}

// stage runs fn in its own span and records its duration.
func (c *Converter) stage(ctx context.Context, name string, fn func(context.Context, trace.Span) error) error {
	if c.OnStage != nil {
		c.OnStage(name)
	}
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "cimflat."+name)
	defer span.End()

	err := fn(ctx, span)
	c.metrics.ObserveStage(name, start)
	if err != nil {
		fail(span, err)
	}
	return err
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
