// Package extract turns a bulletin page into a RawTable. Two
// interchangeable strategies implement the one capability: a layout
// strategy that reconstructs the table from word positions (the
// bordered generations before 2020), and an assisted strategy that
// delegates to a text-generation service (the generations after). The
// publication era selects which strategy to construct; nothing else
// ever branches on era.
package extract

import (
	"context"

	"trrebwatch/internal/pdfsource"
	"trrebwatch/pkg/contracts/domain"
)

// Strategy produces a raw table from one bulletin page. A strategy
// that finds no usable table returns the empty-table sentinel and a
// nil error when the page itself was readable; errors are reserved
// for source and service failures.
type Strategy interface {
	Extract(ctx context.Context, page *pdfsource.PageData) (*domain.RawTable, error)
}

// Shape is the (rows, cols) of a processed table, reported by the
// dispatcher for batch summaries.
type Shape struct {
	Rows int
	Cols int
}

// minTableRows is the smallest row count a credible summary table can
// have. Candidates below it are treated as legends or footnote
// blocks.
const minTableRows = 5
