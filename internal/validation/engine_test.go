package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/pkg/contracts/domain"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

// baseRecord builds a post-2022 all-home record with internally
// consistent metrics for the given region and month.
func baseRecord(region string, date time.Time) domain.MarketRecord {
	return domain.MarketRecord{
		PropertyType:    domain.PropertyAllHomeTypes,
		Date:            date,
		Region:          region,
		RegionType:      domain.RegionTypeRegion,
		Sales:           i64(1000),
		DollarVolume:    f64(850_000_000),
		AveragePrice:    f64(850_000),
		MedianPrice:     f64(780_000),
		NewListings:     i64(1800),
		SNLRTrend:       f64(0.55),
		ActiveListings:  i64(2400),
		MonthsInventory: f64(2.4),
		AvgSPLP:         f64(0.99),
		AvgDOM:          f64(21),
		AvgPDOM:         f64(28),
	}
}

// fullSnapshot covers every key region plus filler regions so the
// completeness checks stay quiet.
func fullSnapshot(date time.Time) []domain.MarketRecord {
	regions := []string{
		"TRREB Total", "Halton Region", "Peel Region", "City of Toronto",
		"York Region", "Durham Region", "Dufferin County", "Simcoe County",
		"Burlington", "Oakville", "Milton", "Brampton", "Mississauga",
		"Caledon", "Markham", "Vaughan", "Pickering", "Ajax",
	}
	records := make([]domain.MarketRecord, 0, len(regions))
	for _, r := range regions {
		records = append(records, baseRecord(r, date))
	}
	return records
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func issuesFor(report *domain.ValidationReport, check string) []domain.ValidationIssue {
	var out []domain.ValidationIssue
	for _, issue := range report.Issues {
		if issue.Check == check {
			out = append(out, issue)
		}
	}
	return out
}

func TestEngineCleanDataset(t *testing.T) {
	engine := NewEngine(nil)
	records := append(fullSnapshot(month(2024, time.January)), fullSnapshot(month(2024, time.February))...)

	report := engine.Run(records, domain.PropertyAllHomeTypes)

	require.NotNil(t, report)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Issues)
	assert.Equal(t, len(records), report.RecordCount)
	assert.NotEmpty(t, report.ID)
}

func TestRegionChecks(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("unknown region flagged once", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		records = append(records, baseRecord("Atlantis", month(2024, time.January)))

		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "region-completeness")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "Atlantis")
	})

	t.Run("missing key region", func(t *testing.T) {
		var records []domain.MarketRecord
		for _, rec := range fullSnapshot(month(2024, time.January)) {
			if rec.Region == "City of Toronto" {
				continue
			}
			records = append(records, rec)
		}

		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "region-completeness")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "City of Toronto")
	})

	t.Run("truncated snapshot", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))[:6]

		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "region-completeness")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "truncated")
	})
}

func TestMissingnessCheck(t *testing.T) {
	engine := NewEngine(nil)
	records := fullSnapshot(month(2024, time.January))
	// Null out median price on a third of the rows, well past the 5%
	// tolerance.
	for i := 0; i < len(records); i += 3 {
		records[i].MedianPrice = nil
	}

	report := engine.Run(records, domain.PropertyAllHomeTypes)

	issues := issuesFor(report, "missingness")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, domain.ColMedianPrice)
}

func TestSignCheck(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("few negatives tolerated", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		for i := 0; i < 3; i++ {
			records[i].Sales = i64(-5)
		}
		report := engine.Run(records, domain.PropertyAllHomeTypes)
		assert.Empty(t, issuesFor(report, "sign"))
	})

	t.Run("many negatives flagged", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		for i := 0; i < 4; i++ {
			records[i].Sales = i64(-5)
		}
		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "sign")
		require.Len(t, issues, 1)
		assert.Equal(t, 4, issues[0].Count)
	})

	t.Run("ratio fields exempt", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		for i := range records {
			records[i].SNLRTrend = f64(-0.1)
			records[i].AvgSPLP = f64(-0.2)
		}
		report := engine.Run(records, domain.PropertyAllHomeTypes)
		assert.Empty(t, issuesFor(report, "sign"))
	})
}

func TestOutlierCheck(t *testing.T) {
	engine := NewEngine(nil)

	// Three clean months establish the quartiles; six corrupted rows
	// exceed the flagging threshold.
	var records []domain.MarketRecord
	for m := time.January; m <= time.March; m++ {
		records = append(records, fullSnapshot(month(2024, m))...)
	}
	for i := 0; i < 6; i++ {
		records[i].AvgDOM = f64(90_000)
	}

	report := engine.Run(records, domain.PropertyAllHomeTypes)

	issues := issuesFor(report, "outlier")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, domain.ColAvgDOM)
	assert.Equal(t, 6, issues[0].Count)
}

func TestArithmeticCheck(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("within half percent passes", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		// 850M / 1000 sales implies 850,000; published value is 0.4%
		// away, inside tolerance.
		records[0].AveragePrice = f64(853_400)
		report := engine.Run(records, domain.PropertyAllHomeTypes)
		assert.Empty(t, issuesFor(report, "arithmetic"))
	})

	t.Run("beyond tolerance flagged", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		records[0].AveragePrice = f64(900_000)
		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "arithmetic")
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Count)
	})

	t.Run("snlr out of range", func(t *testing.T) {
		records := fullSnapshot(month(2024, time.January))
		records[0].SNLRTrend = f64(1.8)
		records[1].SNLRTrend = f64(-0.05)
		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "arithmetic")
		require.Len(t, issues, 1)
		assert.Equal(t, 2, issues[0].Count)
	})
}

func TestContinuityCheck(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("forty day gap yields one issue per region", func(t *testing.T) {
		records := append(
			fullSnapshot(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
			fullSnapshot(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))...)

		report := engine.Run(records, domain.PropertyAllHomeTypes)

		issues := issuesFor(report, "continuity")
		require.Len(t, issues, len(keyRegions))
		for _, issue := range issues {
			assert.Equal(t, 1, issue.Count)
		}
	})

	t.Run("consecutive months pass", func(t *testing.T) {
		var records []domain.MarketRecord
		for m := time.January; m <= time.June; m++ {
			records = append(records, fullSnapshot(month(2024, m))...)
		}
		report := engine.Run(records, domain.PropertyAllHomeTypes)
		assert.Empty(t, issuesFor(report, "continuity"))
	})
}

func TestQuartiles(t *testing.T) {
	q1, q3 := quartiles([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	assert.InDelta(t, 2.75, q1, 1e-9)
	assert.InDelta(t, 6.25, q3, 1e-9)
}
