package resolve

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/cimflat/internal/canonical"
	"github.com/vvka-141/cimflat/internal/index"
	"github.com/vvka-141/cimflat/internal/metrics"
	"github.com/vvka-141/cimflat/internal/record"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// DefaultReferenceSuffix marks reference fields.
const DefaultReferenceSuffix = record.Separator + "resource"

// Options configures resolution.
type Options struct {
	// ReferenceSuffix marks reference fields. Empty means DefaultReferenceSuffix.
	ReferenceSuffix string
	// MaxPasses stops resolution after that many passes even if it has not
	// converged. Zero means no limit.
	MaxPasses int
	// Workers bounds concurrent planning within a pass. Values below 2 plan
	// sequentially.
	Workers int
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		ReferenceSuffix: DefaultReferenceSuffix,
		MaxPasses:       cimflat.DefaultMaxPasses,
		Workers:         1,
	}
}

// Resolver inlines referenced records using one session's index.
type Resolver struct {
	idx     *index.Index
	opts    Options
	logger  cimflat.Logger
	metrics *metrics.Metrics
}

// New creates a resolver. logger and m may be nil.
func New(idx *index.Index, opts Options, logger cimflat.Logger, m *metrics.Metrics) *Resolver {
	if opts.ReferenceSuffix == "" {
		opts.ReferenceSuffix = DefaultReferenceSuffix
	}
	return &Resolver{idx: idx, opts: opts, logger: logger, metrics: m}
}

// insertion is one planned Inline call.
type insertion struct {
	name  string
	value string
	via   []*record.Record
}

// counts accumulates reference outcomes of one pass.
type counts struct {
	references     int
	resolved       int
	unresolved     int
	selfReferences int
	cycles         int
}

func (c *counts) add(o counts) {
	c.references += o.references
	c.resolved += o.resolved
	c.unresolved += o.unresolved
	c.selfReferences += o.selfReferences
	c.cycles += o.cycles
}

// Resolve runs passes over every record of classes until a pass inserts
// nothing or MaxPasses is reached. Records are modified in place.
//
// The only error returned is the context's; records keep every field
// inserted by passes completed before cancellation.
func (r *Resolver) Resolve(ctx context.Context, classes *record.Classes) (Stats, error) {
	records := classes.All()
	var stats Stats

	for pass := 1; r.opts.MaxPasses == 0 || pass <= r.opts.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		plans, c, err := r.plan(ctx, records)
		if err != nil {
			return stats, err
		}
		inserted := apply(records, plans)

		stats.Passes = pass
		stats.Inserted = append(stats.Inserted, inserted)
		stats.References = c.references
		stats.Resolved = c.resolved
		stats.Unresolved = c.unresolved
		stats.SelfReferences = c.selfReferences
		stats.Cycles = c.cycles

		r.metrics.RecordPass(metrics.PassCounts{
			Resolved:       c.resolved,
			Unresolved:     c.unresolved,
			SelfReferences: c.selfReferences,
			Cycles:         c.cycles,
			Inserted:       inserted,
		})
		r.verbose("Pass %d: %d fields inlined, %d/%d references resolved, %d unresolved",
			pass, inserted, c.resolved, c.references, c.unresolved)

		if inserted == 0 {
			stats.Converged = true
			break
		}
	}

	r.metrics.SetPasses(stats.Passes)
	if !stats.Converged && r.logger != nil {
		r.logger.Info("Reference resolution stopped after %d passes without converging", stats.Passes)
	}
	return stats, nil
}

// plan computes the insertions of one pass without modifying any record.
func (r *Resolver) plan(ctx context.Context, records []*record.Record) ([][]insertion, counts, error) {
	plans := make([][]insertion, len(records))
	var total counts

	if r.opts.Workers < 2 || len(records) < 2 {
		for i, rec := range records {
			plans[i] = r.planRecord(rec, &total)
		}
		return plans, total, nil
	}

	chunks := chunkBounds(len(records), r.opts.Workers)
	partial := make([]counts, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for ci, bounds := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := bounds[0]; i < bounds[1]; i++ {
				plans[i] = r.planRecord(records[i], &partial[ci])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, counts{}, err
	}
	for _, c := range partial {
		total.add(c)
	}
	return plans, total, nil
}

// planRecord collects the insertions for the references of src.
// Planned names are first-wins within src, and existing fields always win.
func (r *Resolver) planRecord(src *record.Record, c *counts) []insertion {
	var out []insertion
	planned := make(map[string]bool)

	src.Range(func(name, value string) bool {
		if !strings.HasSuffix(name, r.opts.ReferenceSuffix) {
			return true
		}
		id, ok := canonical.Canonicalize(value)
		if !ok {
			return true
		}
		c.references++

		target, found := r.idx.Lookup(id)
		if !found {
			c.unresolved++
			return true
		}
		if target == src {
			c.selfReferences++
			return true
		}
		chain := src.Via(name)
		if containsRecord(chain, target) {
			c.cycles++
			return true
		}
		c.resolved++

		prefix := strings.TrimSuffix(name, r.opts.ReferenceSuffix)
		target.Range(func(field, v string) bool {
			if record.IsProtected(field) || v == "" {
				return true
			}
			newName := prefix + record.Separator + field
			if planned[newName] || src.Has(newName) {
				return true
			}
			via := provenance(chain, target, target.Via(field))
			if !simplePath(src, via) {
				c.cycles++
				return true
			}
			planned[newName] = true
			out = append(out, insertion{name: newName, value: v, via: via})
			return true
		})
		return true
	})
	return out
}

// apply performs planned insertions and returns how many took effect.
func apply(records []*record.Record, plans [][]insertion) int {
	inserted := 0
	for i, rec := range records {
		for _, ins := range plans[i] {
			if rec.Inline(ins.name, ins.value, ins.via) {
				inserted++
			}
		}
	}
	return inserted
}

func (r *Resolver) verbose(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Verbose(format, args...)
	}
}

// provenance joins the path to the target, the target itself and the path
// the target's field came through, nearest first.
func provenance(chain []*record.Record, target *record.Record, tail []*record.Record) []*record.Record {
	via := make([]*record.Record, 0, len(chain)+1+len(tail))
	via = append(via, chain...)
	via = append(via, target)
	return append(via, tail...)
}

// simplePath reports whether via neither contains src nor repeats a record.
func simplePath(src *record.Record, via []*record.Record) bool {
	seen := make(map[*record.Record]bool, len(via))
	for _, rec := range via {
		if rec == src || seen[rec] {
			return false
		}
		seen[rec] = true
	}
	return true
}

func containsRecord(list []*record.Record, rec *record.Record) bool {
	for _, r := range list {
		if r == rec {
			return true
		}
	}
	return false
}

// chunkBounds splits n items into at most parts contiguous [start, end) ranges.
func chunkBounds(n, parts int) [][2]int {
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
