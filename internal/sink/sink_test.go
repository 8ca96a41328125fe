package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vvka-141/cimflat/internal/record"
	"github.com/vvka-141/cimflat/internal/table"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

func rec(kv ...string) *record.Record {
	r := record.New()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

func breakerTable() *table.Table {
	return table.Build("Breaker", []*record.Record{
		rec("xml_tag", "Breaker", "declared_id", "_br1", "IdentifiedObject.name", "BR 1"),
		rec("xml_tag", "Breaker", "declared_id", "_br2", "Switch.normalOpen", "true"),
	})
}

func TestNewFile_Formats(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := NewFile(fs, "out", SuffixEnriched, cimflat.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "csv:enriched", s.Name())

	s, err = NewFile(fs, "out", SuffixClean, cimflat.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "xlsx:clean", s.Name())

	_, err = NewFile(fs, "out", SuffixClean, "parquet")
	assert.ErrorIs(t, err, cimflat.ErrInvalidConfig)
}

func TestCSVSink_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFile(fs, "output_enriched", SuffixEnriched, cimflat.FormatCSV)
	require.NoError(t, err)

	report, err := s.Write(context.Background(), breakerTable())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, "Breaker", report.Table)
	assert.Equal(t, "output_enriched/Breaker_enriched.csv", report.Location)
	assert.Equal(t, "Wrote 2 rows -> output_enriched/Breaker_enriched.csv", report.String())

	data, err := afero.ReadFile(fs, report.Location)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"xml_tag", "declared_id", "IdentifiedObject.name", "Switch.normalOpen"},
		{"Breaker", "_br1", "BR 1", ""},
		{"Breaker", "_br2", "", "true"},
	}, rows)
}

func TestCSVSink_QuotesSpecialValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFile(fs, "out", SuffixEnriched, cimflat.FormatCSV)
	require.NoError(t, err)

	tbl := table.Build("Line", []*record.Record{rec("xml_tag", "Line", "desc", "a, \"b\"\nc")})
	report, err := s.Write(context.Background(), tbl)
	require.NoError(t, err)

	rows, err := csv.NewReader(mustOpen(t, fs, report.Location)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a, \"b\"\nc", rows[1][1])
}

func TestCSVSink_CancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFile(fs, "out", SuffixEnriched, cimflat.FormatCSV)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Write(ctx, breakerTable())
	assert.ErrorIs(t, err, context.Canceled)

	exists, _ := afero.Exists(fs, "out/Breaker_enriched.csv")
	assert.False(t, exists)
}

func TestCSVSink_ReadOnlyFilesystemFails(t *testing.T) {
	s, err := NewFile(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out", SuffixEnriched, cimflat.FormatCSV)
	require.NoError(t, err)

	_, err = s.Write(context.Background(), breakerTable())
	assert.Error(t, err)
}

func TestXLSXSink_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFile(fs, "output_clean", SuffixClean, cimflat.FormatXLSX)
	require.NoError(t, err)

	report, err := s.Write(context.Background(), breakerTable())
	require.NoError(t, err)
	assert.Equal(t, "output_clean/Breaker_clean.xlsx", report.Location)

	book, err := excelize.OpenReader(mustOpen(t, fs, report.Location))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Breaker"}, book.GetSheetList())
	rows, err := book.GetRows("Breaker")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"xml_tag", "declared_id", "IdentifiedObject.name", "Switch.normalOpen"}, rows[0])
	assert.Equal(t, []string{"Breaker", "_br1", "BR 1"}, rows[1], "trailing absent cell is not written")
	assert.Equal(t, []string{"Breaker", "_br2", "", "true"}, rows[2])
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "Breaker", fileSafe("Breaker"))
	assert.Equal(t, "a_b_c", fileSafe("a/b:c"))
	assert.Equal(t, "_", fileSafe(".."))
	assert.Equal(t, "_", fileSafe(""))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Breaker", sheetName("Breaker"))
	assert.Equal(t, "a_b_", sheetName("a[b]"))
	assert.Equal(t, "Sheet1", sheetName("''"))

	long := strings.Repeat("x", 40)
	assert.Len(t, sheetName(long), excelize.MaxSheetNameLength)
}

func mustOpen(t *testing.T, fs afero.Fs, path string) *bytes.Reader {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
