// Package normalize repairs an extracted raw table into the stable
// vocabulary: it finds and promotes the region column, recovers a
// header row that slid into the data, canonicalizes column and region
// labels, and drops the non-data rows every bulletin carries. Each
// transform is total; a table nothing can be done with passes through
// and is flagged by validation later rather than crashing here. The
// pipeline is a fixed point: running it on already-normalized output
// changes nothing.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"

	"trrebwatch/internal/canonical"
	"trrebwatch/pkg/contracts/domain"
)

// RegionColumn is the canonical label of the promoted region column.
const RegionColumn = "Region"

// Table runs the full transform pipeline over a raw table. The input
// is never mutated.
func Table(t *domain.RawTable, logger *slog.Logger) *domain.RawTable {
	if logger == nil {
		logger = slog.Default()
	}
	if t.Empty() {
		return t.Clone()
	}
	out := cleanCells(t.Clone())
	out = identifyRegionColumn(out, logger)
	out = promoteHeader(out, logger)
	out = canonicalizeColumns(out)
	out = canonicalizeRegions(out)
	out = filterRows(out)
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func cleanCells(t *domain.RawTable) *domain.RawTable {
	for i := range t.Columns {
		t.Columns[i] = cleanCell(t.Columns[i])
	}
	for _, row := range t.Rows {
		for i := range row {
			row[i] = cleanCell(row[i])
		}
	}
	return t
}

// regionSearchSpan bounds how many columns, and failing that how many
// rows, are searched for region tokens when the first column has
// none.
const regionSearchSpan = 3

// identifyRegionColumn makes sure regions sit in column 0. When they
// were extracted into a later column, that column is moved to the
// front; when they ended up in a row (a transposed extraction), that
// row becomes the header and everything above it is discarded. When
// no region tokens are found at all the table passes through
// unchanged and validation flags it downstream.
func identifyRegionColumn(t *domain.RawTable, logger *slog.Logger) *domain.RawTable {
	_, cols := t.Shape()
	if cols == 0 {
		return t
	}

	if canonical.ContainsAnchorRegion(joinColumn(t, 0)) {
		return t
	}

	for col := 1; col < cols && col < regionSearchSpan; col++ {
		if canonical.ContainsAnchorRegion(joinColumn(t, col)) {
			logger.Warn("region tokens found away from first column, promoting",
				slog.Int("column", col))
			return moveColumnFront(t, col)
		}
	}

	for row := 0; row < len(t.Rows) && row < regionSearchSpan+2; row++ {
		if canonical.ContainsAnchorRegion(strings.Join(t.Rows[row], " ")) {
			logger.Warn("region tokens found in a row, treating it as the header",
				slog.Int("row", row))
			return &domain.RawTable{Columns: t.Rows[row], Rows: t.Rows[row+1:]}
		}
	}

	return t
}

func joinColumn(t *domain.RawTable, col int) string {
	var b strings.Builder
	for row := range t.Rows {
		b.WriteString(t.Cell(row, col))
		b.WriteString(" ")
	}
	return b.String()
}

func moveColumnFront(t *domain.RawTable, col int) *domain.RawTable {
	out := &domain.RawTable{
		Columns: make([]string, 0, len(t.Columns)),
		Rows:    make([][]string, len(t.Rows)),
	}
	if col < len(t.Columns) {
		out.Columns = append(out.Columns, t.Columns[col])
	} else {
		out.Columns = append(out.Columns, "")
	}
	for i, c := range t.Columns {
		if i != col {
			out.Columns = append(out.Columns, c)
		}
	}
	for r, row := range t.Rows {
		moved := make([]string, 0, len(row))
		moved = append(moved, t.Cell(r, col))
		for i, cell := range row {
			if i != col {
				moved = append(moved, cell)
			}
		}
		out.Rows[r] = moved
	}
	return out
}

// promoteHeader recovers the header when extraction emitted it as the
// first data row.
func promoteHeader(t *domain.RawTable, logger *slog.Logger) *domain.RawTable {
	if len(t.Rows) == 0 {
		return t
	}
	first := t.Rows[0]
	if canonical.LooksLikeHeader(strings.Join(first, " ")) {
		logger.Debug("first data row looks like column headers, promoting")
		return &domain.RawTable{Columns: first, Rows: t.Rows[1:]}
	}
	return t
}

// canonicalizeColumns maps raw column labels onto the stable
// vocabulary. Exact matches only: a label the map does not know stays
// as it is.
func canonicalizeColumns(t *domain.RawTable) *domain.RawTable {
	for i, label := range t.Columns {
		if canon, ok := canonical.Column(label); ok {
			t.Columns[i] = canon
		}
	}
	if len(t.Columns) > 0 && (t.Columns[0] == "" || strings.HasPrefix(t.Columns[0], "Unnamed")) {
		t.Columns[0] = RegionColumn
	}
	return t
}

var numericCell = regexp.MustCompile(`^-?[\d,]+(\.\d+)?$`)

// canonicalizeRegions maps region cells onto canonical names. Unknown
// values pass through, except purely numeric ones: a number in the
// region slot means the columns were misaligned upstream, so the cell
// is nulled and row filtering takes the row out.
func canonicalizeRegions(t *domain.RawTable) *domain.RawTable {
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		if canon, ok := canonical.Region(row[0]); ok {
			row[0] = canon
			continue
		}
		if numericCell.MatchString(row[0]) {
			row[0] = ""
		}
	}
	return t
}

// nonDataPatterns mark the footnote, copyright and section-summary
// rows the bulletins print beneath every table.
var nonDataPatterns = []string{
	"Source:", "Notes:", "Copyright", "© 20", "Market Watch", "SUMMARY OF",
}

// filterRows drops rows that carry no data: recognized footnote
// patterns, rows whose region slot is empty, and fully empty rows.
func filterRows(t *domain.RawTable) *domain.RawTable {
	kept := t.Rows[:0]
rowLoop:
	for _, row := range t.Rows {
		if len(row) == 0 || allEmpty(row) {
			continue
		}
		region := row[0]
		if region == "" {
			continue
		}
		for _, pattern := range nonDataPatterns {
			if strings.Contains(region, pattern) {
				continue rowLoop
			}
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return t
}

func allEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
