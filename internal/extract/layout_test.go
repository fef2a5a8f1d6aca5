package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/internal/pdfsource"
)

func word(x, y float64, s string) pdfsource.Word {
	return pdfsource.Word{X: x, Y: y, W: float64(len(s)) * 5, S: s}
}

// gridPage lays out n rows of three words each on shared column
// start positions, the way the bordered layouts render.
func gridPage(n int) *pdfsource.PageData {
	var words []pdfsource.Word
	for i := 0; i < n; i++ {
		y := 700 - float64(i)*12
		words = append(words,
			word(50, y, fmt.Sprintf("Region%d", i)),
			word(200, y, fmt.Sprintf("%d", 100+i)),
			word(350, y, fmt.Sprintf("$%d", 1000+i)),
		)
	}
	return &pdfsource.PageData{Number: 1, Words: words}
}

func TestLayoutExtractGrid(t *testing.T) {
	s := NewLayoutStrategy(nil)

	table, err := s.Extract(context.Background(), gridPage(8))

	require.NoError(t, err)
	rows, cols := table.Shape()
	assert.Equal(t, 7, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"Region0", "100", "$1000"}, table.Columns)
	assert.Equal(t, []string{"Region1", "101", "$1001"}, table.Rows[0])
}

func TestLayoutExtractWhitespaceFallback(t *testing.T) {
	// Column starts drift line to line, so no shared anchors form,
	// but the wide gap between the two words still splits cells.
	var words []pdfsource.Word
	for i := 0; i < 6; i++ {
		y := 700 - float64(i)*12
		jitter := float64(i) * 8
		words = append(words,
			word(50+jitter, y, fmt.Sprintf("Region%d", i)),
			word(300+jitter, y, fmt.Sprintf("%d", 100+i)),
		)
	}
	s := NewLayoutStrategy(nil)

	table, err := s.Extract(context.Background(), &pdfsource.PageData{Number: 1, Words: words})

	require.NoError(t, err)
	rows, cols := table.Shape()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"Region0", "100"}, table.Columns)
}

func TestLayoutPicksLargestCandidate(t *testing.T) {
	// A three-line legend above the data table; the separator line has
	// a single cell so the blocks stay distinct. The larger block must
	// win even though the legend comes first.
	var words []pdfsource.Word
	y := 700.0
	for i := 0; i < 3; i++ {
		jitter := float64(i) * 8
		words = append(words,
			word(50+jitter, y, "legend"),
			word(300+jitter, y, "entry"),
		)
		y -= 12
	}
	words = append(words, word(50, y, "separator"))
	y -= 12
	for i := 0; i < 8; i++ {
		jitter := float64(i) * 8
		words = append(words,
			word(60+jitter, y, fmt.Sprintf("Region%d", i)),
			word(310+jitter, y, fmt.Sprintf("%d", i)),
		)
		y -= 12
	}
	s := NewLayoutStrategy(nil)

	table, err := s.Extract(context.Background(), &pdfsource.PageData{Number: 1, Words: words})

	require.NoError(t, err)
	rows, _ := table.Shape()
	assert.Equal(t, 7, rows)
	assert.Equal(t, []string{"Region0", "0"}, table.Columns)
}

func TestLayoutTieGoesToFirstCandidate(t *testing.T) {
	blocks := []*candidate{
		{rows: [][]string{{"a", "b"}, {"c", "d"}}},
		{rows: [][]string{{"e", "f"}, {"g", "h"}}},
	}
	assert.Same(t, blocks[0], largestCandidate(blocks))
}

func TestLayoutEmptyPage(t *testing.T) {
	s := NewLayoutStrategy(nil)

	table, err := s.Extract(context.Background(), &pdfsource.PageData{Number: 1})

	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestGroupLines(t *testing.T) {
	words := []pdfsource.Word{
		word(200, 500, "b"),
		word(50, 501, "a"),
		word(50, 400, "c"),
		word(10, 300, " "),
	}

	lines := groupLines(words)

	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].words[0].S)
	assert.Equal(t, "b", lines[0].words[1].S)
	assert.Equal(t, "c", lines[1].words[0].S)
}
