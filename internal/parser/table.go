package parser

import "strings"

// Table is a raw tabular source: a header row and string cells.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	// SerialDates is set by readers whose date cells may arrive as
	// spreadsheet serial numbers.
	SerialDates bool

	// Lines holds the source line of each row when the reader skipped blank
	// lines. Nil means rows are contiguous after the header.
	Lines []int

	index map[string]int
}

// NewTable builds a Table, normalizing header names for lookup.
func NewTable(source string, header []string, rows [][]string) *Table {
	t := &Table{
		Source: source,
		Header: header,
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		key := normalizeColumn(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// Column returns the index of a column by case-insensitive name.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[normalizeColumn(name)]
	return i, ok
}

// Require returns a SchemaError listing every absent column.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: t.Source, Missing: missing}
	}
	return nil
}

// Cell returns the trimmed cell at row/column, or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Line returns the 1-indexed source line of data row i (the header is line 1).
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// OtherColumns returns the normalized names and indexes of every column
// not listed in exclude.
func (t *Table) OtherColumns(exclude ...string) map[string]int {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[normalizeColumn(e)] = struct{}{}
	}
	others := make(map[string]int)
	for k, i := range t.index {
		if _, ok := skip[k]; ok || k == "" {
			continue
		}
		others[k] = i
	}
	return others
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}
