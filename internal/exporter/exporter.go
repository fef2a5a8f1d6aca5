// Package exporter materializes the combined per-category datasets:
// a flat CSV for downstream tooling and an XLSX workbook with one
// sheet per category plus a validation summary for human review.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"trrebwatch/pkg/contracts/domain"
)

// combinedHeader is the column order of every combined artifact. It
// is the union across eras; fields a record's generation never
// published stay empty.
var combinedHeader = []string{
	"date", "property_type", "region", "parent_region", "region_type",
	domain.ColSales, domain.ColDollarVolume, domain.ColAveragePrice,
	domain.ColMedianPrice, domain.ColNewListings, domain.ColSNLRTrend,
	domain.ColActiveListings, domain.ColMonthsInventory, domain.ColAvgSPLP,
	domain.ColAvgDOM, domain.ColAvgPDOM,
}

// Exporter writes combined datasets.
type Exporter struct {
	logger *slog.Logger
}

// New builds an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// sortRecords orders a dataset by date, then region, for stable
// artifacts across runs.
func sortRecords(records []domain.MarketRecord) []domain.MarketRecord {
	sorted := append([]domain.MarketRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Region < sorted[j].Region
	})
	return sorted
}

// WriteCombinedCSV writes the full dataset of one category to path.
func (e *Exporter) WriteCombinedCSV(path string, records []domain.MarketRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(combinedHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, rec := range sortRecords(records) {
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	e.logger.Info("combined dataset written",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return nil
}

func csvRow(rec domain.MarketRecord) []string {
	return []string{
		rec.Date.Format("2006-01"),
		string(rec.PropertyType),
		rec.Region,
		rec.ParentRegion,
		string(rec.RegionType),
		intCell(rec.Sales),
		floatCell(rec.DollarVolume),
		floatCell(rec.AveragePrice),
		floatCell(rec.MedianPrice),
		intCell(rec.NewListings),
		floatCell(rec.SNLRTrend),
		intCell(rec.ActiveListings),
		floatCell(rec.MonthsInventory),
		floatCell(rec.AvgSPLP),
		floatCell(rec.AvgDOM),
		floatCell(rec.AvgPDOM),
	}
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
