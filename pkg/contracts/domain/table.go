package domain

// RawTable is the untyped output of an extraction strategy. Column
// labels are kept exactly as they appeared in the source, so they may
// be empty, duplicated or misaligned relative to the data; repairing
// that is the normalizer's job. Row order is preserved from the
// source page end to end.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table carries no data rows. An empty
// table is the non-fatal failure sentinel returned by extraction
// strategies.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Shape returns (rows, cols) for the table.
func (t *RawTable) Shape() (int, int) {
	if t == nil {
		return 0, 0
	}
	return len(t.Rows), len(t.Columns)
}

// Cell returns the cell at (row, col) or "" when the row is ragged
// and does not reach that column.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Clone returns a deep copy. Normalization transforms never mutate
// their input.
func (t *RawTable) Clone() *RawTable {
	if t == nil {
		return nil
	}
	out := &RawTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Column returns the index of the first column with the given label,
// or -1 when absent.
func (t *RawTable) Column(label string) int {
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}
