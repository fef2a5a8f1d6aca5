// Package era decides how a bulletin of a given publication date must
// be parsed. TRREB rebuilt the Market Watch layout twice: extraction
// switched from layout analysis to assisted extraction with the
// January 2020 issue, and the column set changed again with the April
// 2022 issue. Everything downstream of extraction keys off the era
// returned here.
package era

import (
	"fmt"
	"time"

	"trrebwatch/pkg/contracts/domain"
)

// Format cutover dates. A bulletin dated on or after a cutover
// belongs to the later era.
var (
	midPeriodCutover = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	post2022Cutover  = time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC)
)

// Classify maps a bulletin date onto its format generation. Total
// over all dates; the same date always yields the same era.
func Classify(date time.Time) domain.Era {
	switch {
	case date.Before(midPeriodCutover):
		return domain.EraPre2020
	case date.Before(post2022Cutover):
		return domain.EraMidPeriod
	default:
		return domain.EraPost2022
	}
}

// fieldTable registers the expected metric columns for every
// (property type, era) combination. The detached page kept the same
// column set across all three generations; the all-home-types page
// gained Avg PDOM with the 2020 redesign.
var fieldTable = map[domain.PropertyType]map[domain.Era][]domain.Field{
	domain.PropertyAllHomeTypes: {
		domain.EraPre2020:   allHomePre2020,
		domain.EraMidPeriod: allHomeSince2020,
		domain.EraPost2022:  allHomeSince2020,
	},
	domain.PropertyDetached: {
		domain.EraPre2020:   detachedFields,
		domain.EraMidPeriod: detachedFields,
		domain.EraPost2022:  detachedFields,
	},
}

var allHomePre2020 = []domain.Field{
	{Name: domain.ColSales, Kind: domain.KindCount},
	{Name: domain.ColDollarVolume, Kind: domain.KindMoney},
	{Name: domain.ColAveragePrice, Kind: domain.KindMoney},
	{Name: domain.ColMedianPrice, Kind: domain.KindMoney},
	{Name: domain.ColNewListings, Kind: domain.KindCount},
	{Name: domain.ColSNLRTrend, Kind: domain.KindRatio},
	{Name: domain.ColActiveListings, Kind: domain.KindCount},
	{Name: domain.ColMonthsInventory, Kind: domain.KindDecimal},
	{Name: domain.ColAvgSPLP, Kind: domain.KindRatio},
	{Name: domain.ColAvgDOM, Kind: domain.KindDecimal},
}

var allHomeSince2020 = append(append([]domain.Field(nil), allHomePre2020...),
	domain.Field{Name: domain.ColAvgPDOM, Kind: domain.KindDecimal})

var detachedFields = []domain.Field{
	{Name: domain.ColSales, Kind: domain.KindCount},
	{Name: domain.ColDollarVolume, Kind: domain.KindMoney},
	{Name: domain.ColAveragePrice, Kind: domain.KindMoney},
	{Name: domain.ColMedianPrice, Kind: domain.KindMoney},
	{Name: domain.ColNewListings, Kind: domain.KindCount},
	{Name: domain.ColActiveListings, Kind: domain.KindCount},
	{Name: domain.ColAvgSPLP, Kind: domain.KindRatio},
	{Name: domain.ColAvgDOM, Kind: domain.KindDecimal},
}

// ExpectedFields returns the ordered metric columns a reconciled
// table must carry for the given property type and era. The returned
// slice is a copy; callers may not mutate the registry.
func ExpectedFields(propertyType domain.PropertyType, e domain.Era) ([]domain.Field, error) {
	byEra, ok := fieldTable[propertyType]
	if !ok {
		return nil, fmt.Errorf("no field table registered for property type %q", propertyType)
	}
	fields, ok := byEra[e]
	if !ok {
		return nil, fmt.Errorf("no field table registered for %q in era %q", propertyType, e)
	}
	return append([]domain.Field(nil), fields...), nil
}

// ExpectedFieldNames returns just the column names, in declared order.
func ExpectedFieldNames(propertyType domain.PropertyType, e domain.Era) ([]string, error) {
	fields, err := ExpectedFields(propertyType, e)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}

// VerifyRegistry checks that every (property type, era) combination
// has a registered, non-empty, duplicate-free field list. An
// incomplete registry is a configuration error and must stop the
// process at startup, never mid-batch.
func VerifyRegistry() error {
	for _, pt := range domain.PropertyTypes {
		for _, e := range domain.Eras {
			fields, err := ExpectedFields(pt, e)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return fmt.Errorf("empty field table for %q in era %q", pt, e)
			}
			seen := make(map[string]bool, len(fields))
			for _, f := range fields {
				if seen[f.Name] {
					return fmt.Errorf("duplicate field %q for %q in era %q", f.Name, pt, e)
				}
				seen[f.Name] = true
			}
		}
	}
	return nil
}
