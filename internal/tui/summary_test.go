package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cimflat/internal/logging"
)

func sampleSummary() Summary {
	return Summary{
		SessionID:  "6f1c",
		Document:   "model.zip!EQ.xml",
		Digest:     "0123456789abcdef0123",
		Classes:    map[string]int{"Foo": 1, "Baz": 2},
		Records:    3,
		Passes:     2,
		Converged:  true,
		Unresolved: 1,
		Outputs:    []string{"Wrote 1 rows -> out/Foo_enriched.csv"},
	}
}

func TestRenderSummary_Plain(t *testing.T) {
	out := RenderSummary(sampleSummary(), false)

	assert.Contains(t, out, "Document:    model.zip!EQ.xml\n")
	assert.Contains(t, out, "SHA-256:     0123456789ab\n")
	assert.Contains(t, out, "Classes:     Baz=2, Foo=1\n")
	assert.Contains(t, out, "Passes:      2 (converged: yes)\n")
	assert.Contains(t, out, "Wrote 1 rows -> out/Foo_enriched.csv\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderSummary_Styled(t *testing.T) {
	s := sampleSummary()
	s.Converged = false

	out := RenderSummary(s, true)

	assert.Contains(t, out, "Conversion summary")
	assert.Contains(t, out, "model.zip!EQ.xml")
	assert.Contains(t, out, "pass cap")
}

func TestFormatClasses_Empty(t *testing.T) {
	assert.Equal(t, "none", formatClasses(nil))
}

func TestProgressModel_Stages(t *testing.T) {
	var m tea.Model = newProgressModel()

	next, cmd := m.Update(stageMsg("resolving"))
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "resolving")

	next, cmd = next.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), SymbolCheck)
}

func TestProgressModel_Failure(t *testing.T) {
	var m tea.Model = newProgressModel()
	m, _ = m.Update(stageMsg("writing"))
	m, _ = m.Update(doneMsg{err: errors.New("disk full")})

	assert.Contains(t, m.View(), SymbolCross+" writing")
}

func TestNewProgress_NonInteractiveLogs(t *testing.T) {
	p := NewProgress(nil, false, logging.NewNullLogger())
	_, ok := p.(*logProgress)
	require.True(t, ok)

	p.Stage("parsing")
	p.Done(nil)
}
