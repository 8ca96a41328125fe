package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordExtracted("Breaker", 3)
	m.RecordExtracted("Breaker", 2)
	m.RecordExtracted("Bay", 1)
	m.RecordCollisions(4)
	m.RecordPass(PassCounts{Resolved: 5, Unresolved: 1, SelfReferences: 2, Cycles: 1, Inserted: 10})
	m.RecordPass(PassCounts{Resolved: 5, Unresolved: 1})
	m.SetPasses(2)
	m.RecordRows("csv", 7)
	m.RecordSinkFailure("postgres")

	assert.Equal(t, 5.0, testutil.ToFloat64(m.ObjectsExtracted.WithLabelValues("Breaker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObjectsExtracted.WithLabelValues("Bay")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.IdentifierCollided))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ReferencesResolved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReferencesMissing))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SelfReferences))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesSuppressed))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.FieldsInlined))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResolvePasses))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkFailures.WithLabelValues("postgres")))
}

func TestMetrics_InstancesAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.RecordRows("csv", 1)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.RowsWritten.WithLabelValues("csv")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordExtracted("X", 1)
		m.RecordCollisions(1)
		m.RecordPass(PassCounts{Resolved: 1})
		m.SetPasses(1)
		m.RecordRows("csv", 1)
		m.RecordSinkFailure("csv")
		m.ObserveStage("extract", time.Now())
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordExtracted("Terminal", 2)
	m.ObserveStage("resolve", time.Now())

	path := filepath.Join(t.TempDir(), "cimflat.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cimflat_objects_extracted_total{class="Terminal"} 2`)
	assert.Contains(t, string(data), "cimflat_stage_duration_seconds_count")
}
