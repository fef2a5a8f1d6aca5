// Package validation runs the consistency checks over the aggregated
// dataset. Every check is independent and non-fatal: findings are
// collected into an advisory report and never become a control-flow
// signal.
package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"trrebwatch/internal/canonical"
	"trrebwatch/internal/era"
	"trrebwatch/pkg/contracts/domain"
)

// keyRegions must be present in every complete snapshot; their
// absence points at incomplete extraction rather than market
// conditions.
var keyRegions = []string{"TRREB Total", "Halton Region", "Peel Region", "City of Toronto"}

// minExpectedRegions is the smallest region count a credible snapshot
// can have; even the earliest bulletins list more.
const minExpectedRegions = 15

// Engine runs the check battery.
type Engine struct {
	logger *slog.Logger
}

// NewEngine builds a validation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Run executes every check over the aggregated records of one
// property type and returns the combined report.
func (e *Engine) Run(records []domain.MarketRecord, pt domain.PropertyType) *domain.ValidationReport {
	report := &domain.ValidationReport{
		ID:           uuid.NewString(),
		PropertyType: pt,
		GeneratedAt:  time.Now().UTC(),
		RecordCount:  len(records),
	}

	checks := []func([]domain.MarketRecord) []domain.ValidationIssue{
		e.checkRegions,
		e.checkMissingness,
		e.checkSigns,
		e.checkOutliers,
		e.checkArithmetic,
		e.checkContinuity,
	}
	for _, check := range checks {
		for _, issue := range check(records) {
			report.Add(issue)
		}
	}

	e.logger.Info("validation complete",
		slog.String("property_type", string(pt)),
		slog.Int("records", len(records)),
		slog.Int("issues", len(report.Issues)))
	return report
}

// checkRegions flags unknown region labels across the whole dataset,
// and per snapshot flags missing key regions and suspiciously small
// region counts.
func (e *Engine) checkRegions(records []domain.MarketRecord) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	unknown := make(map[string]bool)
	for _, rec := range records {
		if rec.Region != "" && !canonical.KnownRegion(rec.Region) {
			unknown[rec.Region] = true
		}
	}
	if len(unknown) > 0 {
		names := sortedKeys(unknown)
		issues = append(issues, domain.ValidationIssue{
			Severity: domain.SeverityWarning,
			Check:    "region-completeness",
			Message:  fmt.Sprintf("unknown regions found: %v; these may need new entries in the region label map", names),
			Count:    len(names),
		})
	}

	for _, snapshot := range byDate(records) {
		present := make(map[string]bool, len(snapshot.records))
		for _, rec := range snapshot.records {
			present[rec.Region] = true
		}

		var missing []string
		for _, key := range keyRegions {
			if !present[key] {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "region-completeness",
				Message:  fmt.Sprintf("%s: missing key regions %v", snapshot.date.Format("2006-01"), missing),
				Count:    len(missing),
			})
		}
		if len(present) < minExpectedRegions {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "region-completeness",
				Message: fmt.Sprintf("%s: only %d regions found, expected at least %d; extraction may be truncated",
					snapshot.date.Format("2006-01"), len(present), minExpectedRegions),
				Count: len(present),
			})
		}
	}
	return issues
}

// maxNullFraction is how much missingness a field tolerates before it
// is flagged; small gaps are normal across generation boundaries.
const maxNullFraction = 0.05

// checkMissingness flags expected fields whose null fraction exceeds
// the tolerance. Each record is measured against its own era's
// expected field set.
func (e *Engine) checkMissingness(records []domain.MarketRecord) []domain.ValidationIssue {
	expectedCount := make(map[string]int)
	nullCount := make(map[string]int)

	for _, rec := range records {
		fields, err := era.ExpectedFields(rec.PropertyType, era.Classify(rec.Date))
		if err != nil {
			continue
		}
		for _, f := range fields {
			expectedCount[f.Name]++
			if _, ok := rec.Metric(f.Name); !ok {
				nullCount[f.Name]++
			}
		}
	}

	var issues []domain.ValidationIssue
	for _, field := range sortedCountKeys(expectedCount) {
		total := expectedCount[field]
		nulls := nullCount[field]
		if total == 0 {
			continue
		}
		if frac := float64(nulls) / float64(total); frac > maxNullFraction {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "missingness",
				Message: fmt.Sprintf("field %q has %d null values (%.1f%%); consider imputation or filtering",
					field, nulls, frac*100),
				Count: nulls,
			})
		}
	}
	return issues
}

// maxNegatives tolerates the handful of negative values a correction
// row can introduce before flagging a field.
const maxNegatives = 3

// checkSigns flags fields that must be non-negative but carry more
// than a few negative values. Ratio fields are exempt.
func (e *Engine) checkSigns(records []domain.MarketRecord) []domain.ValidationIssue {
	negatives := make(map[string]int)
	for _, rec := range records {
		for _, f := range allFields() {
			if f.Kind == domain.KindRatio {
				continue
			}
			if v, ok := rec.Metric(f.Name); ok && v < 0 {
				negatives[f.Name]++
			}
		}
	}

	var issues []domain.ValidationIssue
	for _, field := range sortedCountKeys(negatives) {
		if count := negatives[field]; count > maxNegatives {
			issues = append(issues, domain.ValidationIssue{
				Severity: domain.SeverityWarning,
				Check:    "sign",
				Message:  fmt.Sprintf("field %q has %d negative values", field, count),
				Count:    count,
			})
		}
	}
	return issues
}

type dateGroup struct {
	date    time.Time
	records []domain.MarketRecord
}

func byDate(records []domain.MarketRecord) []dateGroup {
	grouped := make(map[time.Time][]domain.MarketRecord)
	for _, rec := range records {
		grouped[rec.Date] = append(grouped[rec.Date], rec)
	}
	dates := make([]time.Time, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]dateGroup, len(dates))
	for i, d := range dates {
		out[i] = dateGroup{date: d, records: grouped[d]}
	}
	return out
}

func allFields() []domain.Field {
	fields, _ := era.ExpectedFields(domain.PropertyAllHomeTypes, domain.EraPost2022)
	return fields
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
