package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trrebwatch/pkg/contracts/domain"
)

// sheetNames maps each category to its workbook sheet.
var sheetNames = map[domain.PropertyType]string{
	domain.PropertyAllHomeTypes: "All Home Types",
	domain.PropertyDetached:     "Detached",
}

const validationSheet = "Validation"

// WriteWorkbook writes one XLSX workbook holding every category's
// dataset and a validation summary sheet.
func (e *Exporter) WriteWorkbook(path string, datasets map[domain.PropertyType][]domain.MarketRecord, reports []*domain.ValidationReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, pt := range domain.PropertyTypes {
		records, ok := datasets[pt]
		if !ok {
			continue
		}
		if err := writeDataSheet(f, sheetNames[pt], records); err != nil {
			return err
		}
	}
	if err := writeValidationSheet(f, reports); err != nil {
		return err
	}

	// Drop the default sheet excelize starts with.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	e.logger.Info("workbook written", slog.String("path", path))
	return nil
}

func writeDataSheet(f *excelize.File, name string, records []domain.MarketRecord) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(combinedHeader))
	for i, h := range combinedHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	for i, rec := range sortRecords(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row: %w", err)
		}
		row := sheetRow(rec)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write sheet row: %w", err)
		}
	}
	return nil
}

func sheetRow(rec domain.MarketRecord) []interface{} {
	return []interface{}{
		rec.Date.Format("2006-01"),
		string(rec.PropertyType),
		rec.Region,
		rec.ParentRegion,
		string(rec.RegionType),
		intValue(rec.Sales),
		floatValue(rec.DollarVolume),
		floatValue(rec.AveragePrice),
		floatValue(rec.MedianPrice),
		intValue(rec.NewListings),
		floatValue(rec.SNLRTrend),
		intValue(rec.ActiveListings),
		floatValue(rec.MonthsInventory),
		floatValue(rec.AvgSPLP),
		floatValue(rec.AvgDOM),
		floatValue(rec.AvgPDOM),
	}
}

func intValue(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func writeValidationSheet(f *excelize.File, reports []*domain.ValidationReport) error {
	if _, err := f.NewSheet(validationSheet); err != nil {
		return fmt.Errorf("failed to create validation sheet: %w", err)
	}

	header := []interface{}{"property_type", "generated_at", "records", "severity", "check", "count", "message"}
	if err := f.SetSheetRow(validationSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write validation header: %w", err)
	}

	rowNum := 2
	for _, report := range reports {
		if len(report.Issues) == 0 {
			row := []interface{}{
				string(report.PropertyType), report.GeneratedAt.Format("2006-01-02 15:04:05"),
				report.RecordCount, "", "", 0, "no issues found",
			}
			if err := writeRow(f, rowNum, &row); err != nil {
				return err
			}
			rowNum++
			continue
		}
		for _, issue := range report.Issues {
			row := []interface{}{
				string(report.PropertyType), report.GeneratedAt.Format("2006-01-02 15:04:05"),
				report.RecordCount, string(issue.Severity), issue.Check, issue.Count, issue.Message,
			}
			if err := writeRow(f, rowNum, &row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, row *[]interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address validation row: %w", err)
	}
	if err := f.SetSheetRow(validationSheet, cell, row); err != nil {
		return fmt.Errorf("failed to write validation row: %w", err)
	}
	return nil
}
