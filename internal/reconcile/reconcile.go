// Package reconcile enforces the era's declared schema on a
// normalized table so every downstream consumer sees a stable shape
// regardless of which format generation produced a record.
package reconcile

import (
	"log/slog"

	"trrebwatch/internal/normalize"
	"trrebwatch/pkg/contracts/domain"
)

// Reconcile returns a table whose columns are: the region column
// first, then every expected field in declared order, then any
// additional columns the table carried. Expected fields absent from
// the input are added with empty cells and logged as a warning; the
// gap is either a genuine absence in that generation's source format
// or an extraction miss, and validation will surface it either way.
// Additional columns are never silently dropped; unexpected columns
// may carry diagnostic value.
func Reconcile(t *domain.RawTable, expectedFields []string, logger *slog.Logger) *domain.RawTable {
	if logger == nil {
		logger = slog.Default()
	}
	if t == nil {
		return &domain.RawTable{}
	}

	srcIndex := make(map[string]int, len(t.Columns))
	for i, label := range t.Columns {
		if _, dup := srcIndex[label]; !dup {
			srcIndex[label] = i
		}
	}

	order := make([]string, 0, 1+len(t.Columns)+len(expectedFields))
	order = append(order, regionLabel(t))

	inOrder := map[string]bool{order[0]: true}
	for _, field := range expectedFields {
		if !inOrder[field] {
			order = append(order, field)
			inOrder[field] = true
		}
		if _, present := srcIndex[field]; !present {
			logger.Warn("expected field missing from extracted table, padding with nulls",
				slog.String("field", field))
		}
	}
	for i, label := range t.Columns {
		if i == 0 || inOrder[label] {
			continue
		}
		order = append(order, label)
		inOrder[label] = true
	}

	out := &domain.RawTable{
		Columns: order,
		Rows:    make([][]string, len(t.Rows)),
	}
	for r := range t.Rows {
		row := make([]string, len(order))
		row[0] = t.Cell(r, 0)
		for c := 1; c < len(order); c++ {
			if src, present := srcIndex[order[c]]; present && src != 0 {
				row[c] = t.Cell(r, src)
			}
		}
		out.Rows[r] = row
	}
	return out
}

func regionLabel(t *domain.RawTable) string {
	if len(t.Columns) > 0 && t.Columns[0] != "" {
		return t.Columns[0]
	}
	return normalize.RegionColumn
}
