package validation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"trrebwatch/pkg/contracts/domain"
)

// stableFields hold values that stay within a narrow band over time,
// which makes IQR fences meaningful. Volume-driven fields swing too
// widely with the market to bound this way.
var stableFields = []string{
	domain.ColSNLRTrend,
	domain.ColAvgSPLP,
	domain.ColAvgDOM,
	domain.ColAvgPDOM,
	domain.ColMonthsInventory,
}

const (
	// iqrFenceMultiplier is deliberately loose; the goal is catching
	// parse corruption, not statistically unusual months.
	iqrFenceMultiplier = 5.0
	maxOutlierRows     = 5
)

// checkOutliers fences each stable field at quartile +/- 5*IQR and
// flags fields where more than a handful of rows fall outside.
func (e *Engine) checkOutliers(records []domain.MarketRecord) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, field := range stableFields {
		var values []float64
		for _, rec := range records {
			if v, ok := rec.Metric(field); ok {
				values = append(values, v)
			}
		}
		if len(values) < 4 {
			continue
		}

		q1, q3 := quartiles(values)
		iqr := q3 - q1
		lower := q1 - iqrFenceMultiplier*iqr
		upper := q3 + iqrFenceMultiplier*iqr

		outliers := 0
		for _, v := range values {
			if v < lower || v > upper {
				outliers++
			}
		}
		if outliers > maxOutlierRows {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "outlier",
				Message: fmt.Sprintf("field %q has %d values outside [%.2f, %.2f]",
					field, outliers, lower, upper),
				Count: outliers,
			})
		}
	}
	return issues
}

// quartiles returns Q1 and Q3 with linear interpolation between
// order statistics.
func quartiles(values []float64) (float64, float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

const (
	// avgPriceRelTolerance allows for the rounding the bulletins
	// apply before publication.
	avgPriceRelTolerance = 0.005
	snlrUpperBound       = 1.5
)

// checkArithmetic verifies the published average price against dollar
// volume divided by sales, and bounds the SNLR ratio.
func (e *Engine) checkArithmetic(records []domain.MarketRecord) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	mismatched := 0
	for _, rec := range records {
		if rec.Sales == nil || rec.DollarVolume == nil || rec.AveragePrice == nil {
			continue
		}
		sales := float64(*rec.Sales)
		if sales == 0 || *rec.AveragePrice == 0 {
			continue
		}
		implied := *rec.DollarVolume / sales
		if math.Abs(implied-*rec.AveragePrice)/math.Abs(*rec.AveragePrice) > avgPriceRelTolerance {
			mismatched++
		}
	}
	if mismatched > 0 {
		issues = append(issues, domain.ValidationIssue{
			Severity: domain.SeverityWarning,
			Check:    "arithmetic",
			Message: fmt.Sprintf("%d rows where average price disagrees with dollar volume / sales beyond %.1f%%",
				mismatched, avgPriceRelTolerance*100),
			Count: mismatched,
		})
	}

	outOfRange := 0
	for _, rec := range records {
		if rec.SNLRTrend == nil {
			continue
		}
		if *rec.SNLRTrend < 0 || *rec.SNLRTrend > snlrUpperBound {
			outOfRange++
		}
	}
	if outOfRange > 0 {
		issues = append(issues, domain.ValidationIssue{
			Severity: domain.SeverityWarning,
			Check:    "arithmetic",
			Message:  fmt.Sprintf("%d rows with SNLR trend outside [0, %.1f]", outOfRange, snlrUpperBound),
			Count:    outOfRange,
		})
	}
	return issues
}

// maxMonthlyGap is the longest stretch two consecutive monthly
// observations may sit apart before the series is considered broken.
const maxMonthlyGap = 35 * 24 * time.Hour

// checkContinuity walks each key region's time series in date order
// and flags gaps longer than a month plus slack.
func (e *Engine) checkContinuity(records []domain.MarketRecord) []domain.ValidationIssue {
	series := make(map[string][]time.Time)
	for _, rec := range records {
		for _, key := range keyRegions {
			if rec.Region == key {
				series[key] = append(series[key], rec.Date)
			}
		}
	}

	var issues []domain.ValidationIssue
	for _, region := range keyRegions {
		dates := series[region]
		if len(dates) < 2 {
			continue
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		gaps := 0
		var first string
		for i := 1; i < len(dates); i++ {
			if dates[i].Sub(dates[i-1]) > maxMonthlyGap {
				if gaps == 0 {
					first = fmt.Sprintf("%s to %s",
						dates[i-1].Format("2006-01"), dates[i].Format("2006-01"))
				}
				gaps++
			}
		}
		if gaps > 0 {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "continuity",
				Message:  fmt.Sprintf("region %q has %d gap(s) in its monthly series, first %s", region, gaps, first),
				Count:    gaps,
			})
		}
	}
	return issues
}
