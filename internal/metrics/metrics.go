// Package metrics exposes conversion counters in the Prometheus data model.
//
// cimflat is a batch tool, so metrics are not scraped. A run can dump its
// registry in text exposition format with WriteTextfile (node_exporter's
// textfile collector picks such files up).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks extraction, resolution and output of one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ObjectsExtracted   *prometheus.CounterVec
	IdentifierCollided prometheus.Counter
	ReferencesResolved prometheus.Counter
	ReferencesMissing  prometheus.Counter
	SelfReferences     prometheus.Counter
	CyclesSuppressed   prometheus.Counter
	FieldsInlined      prometheus.Counter
	ResolvePasses      prometheus.Gauge
	RowsWritten        *prometheus.CounterVec
	SinkFailures       *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ObjectsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cimflat_objects_extracted_total",
			Help: "Objects extracted, by class",
		}, []string{"class"}),
		IdentifierCollided: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_identifier_collisions_total",
			Help: "Identifiers that canonicalized to an already indexed value",
		}),
		ReferencesResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_references_resolved_total",
			Help: "Reference fields whose target was found, summed over passes",
		}),
		ReferencesMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_references_unresolved_total",
			Help: "Reference fields whose target is not in the index, summed over passes",
		}),
		SelfReferences: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_self_references_total",
			Help: "Reference fields pointing back at their own record, summed over passes",
		}),
		CyclesSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_cycles_suppressed_total",
			Help: "Inlinings skipped because they would revisit a record",
		}),
		FieldsInlined: factory.NewCounter(prometheus.CounterOpts{
			Name: "cimflat_fields_inlined_total",
			Help: "Fields copied from referenced records",
		}),
		ResolvePasses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cimflat_resolve_passes",
			Help: "Resolution passes executed by the last run",
		}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cimflat_rows_written_total",
			Help: "Rows written, by sink",
		}, []string{"sink"}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cimflat_sink_failures_total",
			Help: "Tables that could not be written, by sink",
		}, []string{"sink"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cimflat_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"stage"}),
	}
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordExtracted counts n objects of class.
func (m *Metrics) RecordExtracted(class string, n int) {
	if m == nil {
		return
	}
	m.ObjectsExtracted.WithLabelValues(class).Add(float64(n))
}

// RecordCollisions counts identifier collisions of the index.
func (m *Metrics) RecordCollisions(n int) {
	if m == nil {
		return
	}
	m.IdentifierCollided.Add(float64(n))
}

// PassCounts are the reference outcomes of one resolution pass.
type PassCounts struct {
	Resolved       int
	Unresolved     int
	SelfReferences int
	Cycles         int
	Inserted       int
}

// RecordPass adds the outcome of one resolution pass.
func (m *Metrics) RecordPass(c PassCounts) {
	if m == nil {
		return
	}
	m.ReferencesResolved.Add(float64(c.Resolved))
	m.ReferencesMissing.Add(float64(c.Unresolved))
	m.SelfReferences.Add(float64(c.SelfReferences))
	m.CyclesSuppressed.Add(float64(c.Cycles))
	m.FieldsInlined.Add(float64(c.Inserted))
}

// SetPasses records the number of passes of the last resolution.
func (m *Metrics) SetPasses(n int) {
	if m == nil {
		return
	}
	m.ResolvePasses.Set(float64(n))
}

// RecordRows counts rows written by sink.
func (m *Metrics) RecordRows(sink string, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(sink).Add(float64(n))
}

// RecordSinkFailure counts a table sink could not write.
func (m *Metrics) RecordSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}

// ObserveStage records the duration of a pipeline stage.
// Call with time.Now() at the start of the stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry to path in text exposition format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
