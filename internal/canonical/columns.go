// Package canonical holds the static vocabulary the pipeline
// normalizes against: the column and region label maps, the master
// region list and the region hierarchy. Everything here is read-only
// process state, loaded once and shared by reference; the maps are
// append-only over the project's lifetime as new historical label
// variants are discovered in old bulletins.
package canonical

import (
	"strings"

	"trrebwatch/pkg/contracts/domain"
)

// columnVariants maps every known raw column label onto its canonical
// name. Lookups are exact-string only: a metric column silently
// mapped onto the wrong canonical name is worse than one left
// unmapped, so no fuzzy matching is ever applied to columns.
var columnVariants = map[string]string{
	// Sales
	"Number of Sales": domain.ColSales,
	"# of Sales":      domain.ColSales,
	"Sales":           domain.ColSales,
	"Sales1":          domain.ColSales,
	"Sales 1":         domain.ColSales,
	"No. of Sales":    domain.ColSales,
	"Total Sales":     domain.ColSales,
	// Dollar Volume
	"Dollar Volume1":  domain.ColDollarVolume,
	"Dollar Volume 1": domain.ColDollarVolume,
	"Dollar Volume":   domain.ColDollarVolume,
	"$ Volume":        domain.ColDollarVolume,
	"Volume ($)":      domain.ColDollarVolume,
	// Average Price
	"Average Price1":  domain.ColAveragePrice,
	"Average Price 1": domain.ColAveragePrice,
	"Average Price":   domain.ColAveragePrice,
	"Avg. Price":      domain.ColAveragePrice,
	"Avg Price":       domain.ColAveragePrice,
	// Median Price
	"Median Price1":  domain.ColMedianPrice,
	"Median Price 1": domain.ColMedianPrice,
	"Median Price":   domain.ColMedianPrice,
	"Med. Price":     domain.ColMedianPrice,
	"Med Price":      domain.ColMedianPrice,
	// New Listings
	"New Listings2":  domain.ColNewListings,
	"New Listings 2": domain.ColNewListings,
	"New Listings":   domain.ColNewListings,
	"New List.":      domain.ColNewListings,
	// SNLR Trend
	"SNLR (Trend) 8":             domain.ColSNLRTrend,
	"SNLR (Trend)8":              domain.ColSNLRTrend,
	"SNLR (Trend) 9":             domain.ColSNLRTrend,
	"SNLR (Trend)9":              domain.ColSNLRTrend,
	"SNLR (Trend)":               domain.ColSNLRTrend,
	"SNLR Trend":                 domain.ColSNLRTrend,
	"SNLR (%)":                   domain.ColSNLRTrend,
	"Sales-to-New Listings Ratio": domain.ColSNLRTrend,
	// Active Listings
	"Active Listings 3": domain.ColActiveListings,
	"Active Listings3":  domain.ColActiveListings,
	"Active Listings":   domain.ColActiveListings,
	"Act. List.":        domain.ColActiveListings,
	"Active List.":      domain.ColActiveListings,
	// Months Inventory
	"Mos. Inv. (Trend)9":  domain.ColMonthsInventory,
	"Mos. Inv. (Trend) 9": domain.ColMonthsInventory,
	"Mos. Inv (Trend)":    domain.ColMonthsInventory,
	"Mos Inv (Trend)":     domain.ColMonthsInventory,
	"Mos. Inv. (Trend)":   domain.ColMonthsInventory,
	"Mos Inv (Trend) 9":   domain.ColMonthsInventory,
	"Mos. Inv.":           domain.ColMonthsInventory,
	"Months of Inventory": domain.ColMonthsInventory,
	// Avg SP/LP
	"Avg. SP / LP4": domain.ColAvgSPLP,
	"Avg. SP/LP4":   domain.ColAvgSPLP,
	"Avg. SP/LP":    domain.ColAvgSPLP,
	"Avg SP/LP":     domain.ColAvgSPLP,
	"Avg. SP/LP 4":  domain.ColAvgSPLP,
	"SP/LP Ratio":   domain.ColAvgSPLP,
	"SP/LP (%)":     domain.ColAvgSPLP,
	// Avg DOM
	"Avg. DOM5":           domain.ColAvgDOM,
	"Avg. DOM 5":          domain.ColAvgDOM,
	"Avg. LDOM":           domain.ColAvgDOM,
	"Avg LDOM":            domain.ColAvgDOM,
	"Avg. Days on Market": domain.ColAvgDOM,
	"Avg DOM":             domain.ColAvgDOM,
	// Avg PDOM
	"Avg. PDOM":         domain.ColAvgPDOM,
	"Avg PDOM":          domain.ColAvgPDOM,
	"Avg. Property DOM": domain.ColAvgPDOM,
	"Property DOM":      domain.ColAvgPDOM,
}

// Column resolves a raw column label to its canonical name. On a
// miss the label is returned unchanged and ok is false.
func Column(label string) (string, bool) {
	if canon, ok := columnVariants[label]; ok {
		return canon, true
	}
	return label, false
}

// metricFragments are lowercase substrings that identify a cell as a
// metric header rather than data. Used by the normalizer to detect a
// header row that was extracted as the first data row.
var metricFragments = []string{
	"sales", "average price", "median price", "new listings",
	"active", "dollar volume", "snlr", "sp/lp", "dom", "mos",
}

// LooksLikeHeader reports whether the joined cell text of a row reads
// like metric column names rather than data.
func LooksLikeHeader(joined string) bool {
	lower := strings.ToLower(joined)
	for _, frag := range metricFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
