package normalize

import (
	"time"

	"trrebwatch/internal/canonical"
	"trrebwatch/internal/era"
	"trrebwatch/pkg/contracts/domain"
)

// BuildRecords types a normalized, reconciled table into market
// records: one per region row, with cells coerced per their field
// kind and hierarchy attributes derived from the region tree.
// Coercion failures become nil fields. Columns outside the expected
// set are preserved verbatim in Extra.
func BuildRecords(t *domain.RawTable, pt domain.PropertyType, date time.Time) ([]domain.MarketRecord, error) {
	fields, err := era.ExpectedFields(pt, era.Classify(date))
	if err != nil {
		return nil, err
	}

	expected := make(map[string]domain.FieldKind, len(fields))
	for _, f := range fields {
		expected[f.Name] = f.Kind
	}

	records := make([]domain.MarketRecord, 0, len(t.Rows))
	for rowIdx, row := range t.Rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		region := row[0]
		rec := domain.MarketRecord{
			Region:       region,
			ParentRegion: canonical.ParentOf(region),
			RegionType:   canonical.TypeOf(region),
			Date:         date,
			PropertyType: pt,
		}

		for colIdx, label := range t.Columns {
			if colIdx == 0 {
				continue
			}
			cell := t.Cell(rowIdx, colIdx)
			kind, isExpected := expected[label]
			if !isExpected {
				if cell != "" {
					if rec.Extra == nil {
						rec.Extra = make(map[string]string)
					}
					rec.Extra[label] = cell
				}
				continue
			}
			setMetric(&rec, label, kind, cell)
		}
		records = append(records, rec)
	}
	return records, nil
}

func setMetric(rec *domain.MarketRecord, label string, kind domain.FieldKind, cell string) {
	switch label {
	case domain.ColSales:
		rec.Sales = Count(cell)
	case domain.ColNewListings:
		rec.NewListings = Count(cell)
	case domain.ColActiveListings:
		rec.ActiveListings = Count(cell)
	case domain.ColDollarVolume:
		rec.DollarVolume = Money(cell)
	case domain.ColAveragePrice:
		rec.AveragePrice = Money(cell)
	case domain.ColMedianPrice:
		rec.MedianPrice = Money(cell)
	case domain.ColSNLRTrend:
		rec.SNLRTrend = Ratio(cell)
	case domain.ColAvgSPLP:
		rec.AvgSPLP = Ratio(cell)
	case domain.ColMonthsInventory:
		rec.MonthsInventory = Decimal(cell)
	case domain.ColAvgDOM:
		rec.AvgDOM = Decimal(cell)
	case domain.ColAvgPDOM:
		rec.AvgPDOM = Decimal(cell)
	default:
		// An expected field with no dedicated slot would be a
		// registry bug; coerce anyway so the value is not lost.
		if v, ok := Coerce(kind, cell); ok && v != nil {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[label] = cell
		}
	}
}
