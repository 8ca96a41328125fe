// Package table aligns the records of one class into a rectangular table.
package table

import "github.com/vvka-141/cimflat/internal/record"

// Table is a class rendered as rows over a shared column set.
// A cell is absent when the record had no such field; absent cells render
// as empty strings but sinks that distinguish NULL can ask Present.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	present [][]bool
}

// Build unions the field names of records in order of first appearance and
// lays every record out over those columns.
func Build(name string, records []*record.Record) *Table {
	t := &Table{Name: name}
	position := make(map[string]int)
	for _, rec := range records {
		rec.Range(func(field, _ string) bool {
			if _, ok := position[field]; !ok {
				position[field] = len(t.Columns)
				t.Columns = append(t.Columns, field)
			}
			return true
		})
	}

	t.Rows = make([][]string, len(records))
	t.present = make([][]bool, len(records))
	for i, rec := range records {
		row := make([]string, len(t.Columns))
		present := make([]bool, len(t.Columns))
		rec.Range(func(field, value string) bool {
			col := position[field]
			row[col] = value
			present[col] = true
			return true
		})
		t.Rows[i] = row
		t.present[i] = present
	}
	return t
}

// FromClasses builds one table per class in class order.
func FromClasses(classes *record.Classes) []*Table {
	out := make([]*Table, 0, classes.Len())
	for _, name := range classes.Names() {
		out = append(out, Build(name, classes.Records(name)))
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Present reports whether the record of row had a field for column col.
func (t *Table) Present(row, col int) bool {
	return t.present[row][col]
}

// Values returns row as a slice of any with nil for absent cells.
func (t *Table) Values(row int) []any {
	out := make([]any, len(t.Columns))
	for col, v := range t.Rows[row] {
		if t.present[row][col] {
			out[col] = v
		}
	}
	return out
}
