package extract

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"trrebwatch/internal/pdfsource"
	"trrebwatch/pkg/contracts/domain"
)

// LayoutStrategy reconstructs the summary table from word positions.
// It tries a grid heuristic first, which expects the strict column
// alignment of the bordered layouts; when that yields nothing
// credible it falls back to a whitespace heuristic that splits each
// line on wide horizontal gaps. Among the candidates of whichever
// heuristic succeeded it keeps the one with the greatest rows x cols
// product: the data table is reliably the largest structure on the
// page, while legends and footnotes are small. Exact ties go to the
// candidate appearing first in page order.
type LayoutStrategy struct {
	logger *slog.Logger
}

// NewLayoutStrategy builds the layout strategy.
func NewLayoutStrategy(logger *slog.Logger) *LayoutStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutStrategy{logger: logger}
}

// Extract implements Strategy. Failure to find a table is non-fatal:
// the empty-table sentinel comes back with a nil error and the caller
// logs and continues the batch.
func (s *LayoutStrategy) Extract(_ context.Context, page *pdfsource.PageData) (*domain.RawTable, error) {
	lines := groupLines(page.Words)
	if len(lines) == 0 {
		return &domain.RawTable{}, nil
	}

	candidates := gridCandidates(lines)
	if !anyCredible(candidates) {
		s.logger.Debug("grid heuristic found no credible table, retrying with whitespace heuristic",
			slog.Int("page", page.Number),
			slog.Int("grid_candidates", len(candidates)))
		candidates = whitespaceCandidates(lines)
	}

	best := largestCandidate(candidates)
	if best == nil {
		s.logger.Warn("no table candidates on page", slog.Int("page", page.Number))
		return &domain.RawTable{}, nil
	}

	table := best.toRawTable()
	rows, cols := table.Shape()
	s.logger.Debug("layout extraction complete",
		slog.Int("page", page.Number),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
	return table, nil
}

// line is one horizontal band of words, left to right.
type line struct {
	y     float64
	words []pdfsource.Word
}

const lineTolerance = 3.0

// groupLines clusters words into lines by Y position, top of page
// first.
func groupLines(words []pdfsource.Word) []line {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]pdfsource.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	for _, w := range sorted {
		if strings.TrimSpace(w.S) == "" {
			continue
		}
		if n := len(lines); n > 0 && math.Abs(lines[n-1].y-w.Y) <= lineTolerance {
			lines[n-1].words = append(lines[n-1].words, w)
			continue
		}
		lines = append(lines, line{y: w.Y, words: []pdfsource.Word{w}})
	}
	return lines
}

// candidate is a contiguous block of lines parsed into cells.
type candidate struct {
	rows [][]string
}

func (c *candidate) cols() int {
	max := 0
	for _, r := range c.rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

func (c *candidate) size() int { return len(c.rows) * c.cols() }

func (c *candidate) toRawTable() *domain.RawTable {
	if len(c.rows) == 0 {
		return &domain.RawTable{}
	}
	cols := c.cols()
	header := make([]string, cols)
	copy(header, c.rows[0])
	return &domain.RawTable{Columns: header, Rows: c.rows[1:]}
}

const (
	columnSnapTolerance = 5.0
	minAnchorSupport    = 4
	minAlignedFraction  = 0.7
)

// gridCandidates finds tables whose cells snap to a shared set of
// column start positions, the signature of the bordered layouts.
func gridCandidates(lines []line) []*candidate {
	anchors := columnAnchors(lines)
	if len(anchors) < 2 {
		return nil
	}

	aligned := make([]bool, len(lines))
	cells := make([][]string, len(lines))
	for i, ln := range lines {
		row, ok := snapToAnchors(ln, anchors)
		aligned[i] = ok
		cells[i] = row
	}

	var out []*candidate
	var current *candidate
	for i := range lines {
		if aligned[i] {
			if current == nil {
				current = &candidate{}
			}
			current.rows = append(current.rows, cells[i])
			continue
		}
		if current != nil && len(current.rows) >= 2 {
			out = append(out, current)
		}
		current = nil
	}
	if current != nil && len(current.rows) >= 2 {
		out = append(out, current)
	}
	return out
}

// columnAnchors clusters word start positions across the page and
// keeps the clusters enough lines share to be column boundaries.
func columnAnchors(lines []line) []float64 {
	var xs []float64
	for _, ln := range lines {
		for _, w := range ln.words {
			xs = append(xs, w.X)
		}
	}
	sort.Float64s(xs)

	var anchors []float64
	i := 0
	for i < len(xs) {
		j := i
		sum := 0.0
		for j < len(xs) && xs[j]-xs[i] <= columnSnapTolerance {
			sum += xs[j]
			j++
		}
		if j-i >= minAnchorSupport {
			anchors = append(anchors, sum/float64(j-i))
		}
		i = j
	}
	return anchors
}

// snapToAnchors assigns each word of a line to its nearest anchor.
// The line counts as grid-aligned when most of its words land on an
// anchor and at least two cells are populated.
func snapToAnchors(ln line, anchors []float64) ([]string, bool) {
	cells := make([]string, len(anchors))
	alignedWords := 0
	for _, w := range ln.words {
		idx, dist := nearestAnchor(anchors, w.X)
		if dist <= columnSnapTolerance {
			alignedWords++
		}
		if cells[idx] != "" {
			cells[idx] += " "
		}
		cells[idx] += w.S
	}

	populated := 0
	for _, c := range cells {
		if c != "" {
			populated++
		}
	}
	ok := populated >= 2 &&
		float64(alignedWords) >= minAlignedFraction*float64(len(ln.words))
	return cells, ok
}

func nearestAnchor(anchors []float64, x float64) (int, float64) {
	idx := sort.SearchFloat64s(anchors, x)
	best, bestDist := 0, math.MaxFloat64
	for _, i := range []int{idx - 1, idx} {
		if i >= 0 && i < len(anchors) {
			if d := math.Abs(anchors[i] - x); d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	return best, bestDist
}

// cellGap is the horizontal whitespace that separates two cells in
// the borderless layouts.
const cellGap = 12.0

// whitespaceCandidates splits each line on wide gaps and groups
// consecutive multi-cell lines into table candidates.
func whitespaceCandidates(lines []line) []*candidate {
	var out []*candidate
	var current *candidate
	for _, ln := range lines {
		row := splitOnGaps(ln)
		if len(row) >= 2 {
			if current == nil {
				current = &candidate{}
			}
			current.rows = append(current.rows, row)
			continue
		}
		if current != nil && len(current.rows) >= 2 {
			out = append(out, current)
		}
		current = nil
	}
	if current != nil && len(current.rows) >= 2 {
		out = append(out, current)
	}
	return out
}

func splitOnGaps(ln line) []string {
	var cells []string
	var b strings.Builder
	prevEnd := math.Inf(-1)
	for _, w := range ln.words {
		if b.Len() > 0 && w.X-prevEnd > cellGap {
			cells = append(cells, b.String())
			b.Reset()
		} else if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	if b.Len() > 0 {
		cells = append(cells, b.String())
	}
	return cells
}

func anyCredible(candidates []*candidate) bool {
	for _, c := range candidates {
		if len(c.rows) >= minTableRows {
			return true
		}
	}
	return false
}

// largestCandidate keeps the biggest table by cell count. The
// secondary key on an exact tie is first occurrence in page order,
// which the iteration order gives for free; it is deterministic and
// matches where the data table sits relative to its legend.
func largestCandidate(candidates []*candidate) *candidate {
	var best *candidate
	for _, c := range candidates {
		if best == nil || c.size() > best.size() {
			best = c
		}
	}
	return best
}
