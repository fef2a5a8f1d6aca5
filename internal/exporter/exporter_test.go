package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trrebwatch/pkg/contracts/domain"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func sampleRecords() []domain.MarketRecord {
	return []domain.MarketRecord{
		{
			PropertyType: domain.PropertyAllHomeTypes,
			Date:         time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			Region:       "TRREB Total",
			ParentRegion: domain.NoParent,
			RegionType:   domain.RegionTypeTotal,
			Sales:        i64(5607),
			AveragePrice: f64(1108720),
			SNLRTrend:    f64(0.441),
		},
		{
			PropertyType: domain.PropertyAllHomeTypes,
			Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			Region:       "Halton Region",
			ParentRegion: domain.NoParent,
			RegionType:   domain.RegionTypeRegion,
			Sales:        i64(421),
		},
	}
}

func TestWriteCombinedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "all_home_types.csv")
	e := New(nil)

	require.NoError(t, e.WriteCombinedCSV(path, sampleRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, combinedHeader, rows[0])
	// Sorted by date: January before February.
	assert.Equal(t, "2024-01", rows[1][0])
	assert.Equal(t, "Halton Region", rows[1][2])
	assert.Equal(t, "2024-02", rows[2][0])
	assert.Equal(t, "5607", rows[2][5])
	assert.Equal(t, "0.441", rows[2][10])
	// Null metric stays empty, not zero.
	assert.Equal(t, "", rows[1][10])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "market_watch.xlsx")
	e := New(nil)

	report := &domain.ValidationReport{
		ID:           "r1",
		PropertyType: domain.PropertyAllHomeTypes,
		GeneratedAt:  time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
		RecordCount:  2,
		Issues: []domain.ValidationIssue{
			{Severity: domain.SeverityWarning, Check: "missingness", Message: "field x", Count: 3},
		},
	}

	datasets := map[domain.PropertyType][]domain.MarketRecord{
		domain.PropertyAllHomeTypes: sampleRecords(),
	}
	require.NoError(t, e.WriteWorkbook(path, datasets, []*domain.ValidationReport{report}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "All Home Types")
	assert.Contains(t, sheets, validationSheet)
	assert.NotContains(t, sheets, "Sheet1")

	region, err := f.GetCellValue("All Home Types", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Halton Region", region)

	check, err := f.GetCellValue(validationSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "missingness", check)
}
