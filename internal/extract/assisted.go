package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	apperrors "trrebwatch/internal/errors"
	"trrebwatch/internal/pdfsource"
	"trrebwatch/pkg/contracts/domain"
)

// Completer is the text-generation service the assisted strategy
// delegates to.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AssistedStrategy serializes the page text into a fixed instruction
// template and asks a text-generation service for the table as CSV.
// Used for the post-cutover layouts, whose tables defeat positional
// reconstruction. Requests are deterministic (temperature zero) and
// the service is instructed to reply with CSV only, leaving the first
// (region) column header empty.
type AssistedStrategy struct {
	completer    Completer
	propertyType domain.PropertyType
	era          domain.Era
	logger       *slog.Logger
}

// NewAssistedStrategy builds the assisted strategy for one
// (property type, era) pair; the pair picks the instruction template,
// since the expected column list differs.
func NewAssistedStrategy(completer Completer, pt domain.PropertyType, era domain.Era, logger *slog.Logger) *AssistedStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistedStrategy{completer: completer, propertyType: pt, era: era, logger: logger}
}

const systemPrompt = "You are a CSV table extractor."

// Extract implements Strategy. A transport or service error, or a
// reply with no parsable rows, is an extraction failure for this
// document only.
func (s *AssistedStrategy) Extract(ctx context.Context, page *pdfsource.PageData) (*domain.RawTable, error) {
	if strings.TrimSpace(page.Text) == "" {
		return nil, fmt.Errorf("%w: page %d has no text", apperrors.ErrExtractionFailed, page.Number)
	}

	prompt := buildPrompt(s.propertyType, s.era, page.Text)
	reply, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExtractionFailed, err)
	}

	table, dropped := parseCSVReply(reply)
	if dropped > 0 {
		s.logger.Warn("dropped unparseable rows from service reply",
			slog.Int("page", page.Number),
			slog.Int("dropped", dropped))
	}
	if table.Empty() {
		return nil, fmt.Errorf("%w: service reply contained no table rows", apperrors.ErrExtractionFailed)
	}

	rows, cols := table.Shape()
	s.logger.Debug("assisted extraction complete",
		slog.Int("page", page.Number),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
	return table, nil
}

// parseCSVReply parses the service reply leniently: markdown fences
// and blank lines are skipped, ragged rows are kept, and any line
// that fails CSV parsing outright is dropped rather than failing the
// table.
func parseCSVReply(reply string) (*domain.RawTable, int) {
	table := &domain.RawTable{}
	dropped := 0
	for _, rawLine := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}

		reader := csv.NewReader(strings.NewReader(trimmed))
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		record, err := reader.Read()
		if err != nil {
			dropped++
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		if table.Columns == nil {
			table.Columns = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, dropped
}

// buildPrompt renders the instruction template for one bulletin page.
// The column lists mirror each generation's published layout, and the
// mid-period templates keep the footnote-numbered labels that
// generation printed.
func buildPrompt(pt domain.PropertyType, era domain.Era, pageText string) string {
	var columns, styled string
	switch {
	case pt == domain.PropertyAllHomeTypes && era == domain.EraMidPeriod:
		columns = "Region, # of Sales, Dollar Volume, Average Price, Median Price, New Listings, SNLR (Trend), Active Listings, Mos Inv (Trend), Avg. SP/LP, Avg. LDOM, Avg. PDOM"
		styled = "the Toronto Regional Real Estate Board's January 2020 report"
	case pt == domain.PropertyAllHomeTypes:
		columns = "Region, Sales, Dollar Volume, Average Price, Median Price, New Listings, SNLR Trend, Active Listings, Mos Inv (Trend), Avg. SP/LP, Avg. LDOM, Avg. PDOM"
		styled = "the Toronto Regional Real Estate Board's June 2024 report"
	default:
		columns = "Region, # of Sales, Dollar Volume, Average Price, Median Price, New Listings, Active Listings, Avg. SP/LP, Avg. LDOM"
		styled = "the Toronto Regional Real Estate Board's January 2020 report"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Construct a CSV file containing real estate transaction data for a specified month, using the provided PDF text in the <DATA> section below. The PDF text is structured similarly to %s. The CSV must include the following columns: %s. Adhere to the following formatting rules:\n\n", styled, columns)
	b.WriteString("1. The Region column should have no title in the CSV header (i.e., the first column header is empty).\n")
	b.WriteString("2. Extract data directly from the <DATA> section to populate the table, ensuring accuracy and completeness for the specified month indicated in the PDF text.\n")
	b.WriteString("3. Numeric values (e.g., Sales, New Listings, Active Listings) should be formatted without quotes unless they contain commas, in which case use double quotes.\n")
	b.WriteString("4. Monetary values (e.g., Dollar Volume, Average Price, Median Price) should include a dollar sign and commas for thousands (e.g., \"$1,234,567\") and be wrapped in quotes if commas are present.\n")
	if pt == domain.PropertyAllHomeTypes {
		b.WriteString("5. Percentage values (e.g., SNLR, Avg. SP/LP) should include a percent sign (e.g., \"58.5%\").\n")
		b.WriteString("6. Decimal values (e.g., Mos Inv (Trend)) should be formatted to one decimal place (e.g., \"2.0\").\n")
		b.WriteString("7. Wrap any field containing commas in double quotes to ensure proper CSV formatting.\n")
		b.WriteString("8. Preserve the hierarchical structure of regions (e.g., TRREB Total, Halton Region, Burlington, etc.) as presented in the PDF text.\n")
	} else {
		b.WriteString("5. Wrap any field containing commas in double quotes to ensure proper CSV formatting.\n")
		b.WriteString("6. Preserve the hierarchical structure of regions (e.g., TRREB Total, Halton Region, Burlington, etc.) as presented in the PDF text.\n")
	}
	b.WriteString("\n<DATA>\n")
	b.WriteString(pageText)
	b.WriteString("\n</DATA>\n\nRespond ONLY with CSV content. Do not summarize or explain.\n")
	return b.String()
}
