package domain

import (
	"time"
)

// MarketRecord is one row of the final dataset: a single region's
// metrics for one (bulletin, property type) pair. Metric fields are
// pointers because any cell can legitimately be absent in a given
// format generation or fail coercion; a nil value is recorded, never
// an error.
//
// SNLRTrend and AvgSPLP are stored as fractions, not percentages.
type MarketRecord struct {
	Region       string       `json:"region" validate:"required"`
	ParentRegion string       `json:"parent_region"`
	RegionType   RegionType   `json:"region_type" validate:"required"`
	Date         time.Time    `json:"date" validate:"required"`
	PropertyType PropertyType `json:"property_type" validate:"required"`

	Sales           *int64   `json:"sales,omitempty"`
	DollarVolume    *float64 `json:"dollar_volume,omitempty"`
	AveragePrice    *float64 `json:"average_price,omitempty"`
	MedianPrice     *float64 `json:"median_price,omitempty"`
	NewListings     *int64   `json:"new_listings,omitempty"`
	SNLRTrend       *float64 `json:"snlr_trend,omitempty"`
	ActiveListings  *int64   `json:"active_listings,omitempty"`
	MonthsInventory *float64 `json:"months_inventory,omitempty"`
	AvgSPLP         *float64 `json:"avg_sp_lp,omitempty"`
	AvgDOM          *float64 `json:"avg_dom,omitempty"`
	AvgPDOM         *float64 `json:"avg_pdom,omitempty"`

	// Extra carries columns that were present in the source but are
	// not part of the expected field set for the record's format
	// generation. They are preserved verbatim for diagnostics.
	Extra map[string]string `json:"extra,omitempty"`
}

// NoParent is the parent_region sentinel for the board-wide total and
// for regions that are not part of the known hierarchy.
const NoParent = "None"

// Canonical metric column names. Every historical label variant maps
// onto one of these.
const (
	ColSales           = "Sales"
	ColDollarVolume    = "Dollar Volume"
	ColAveragePrice    = "Average Price"
	ColMedianPrice     = "Median Price"
	ColNewListings     = "New Listings"
	ColSNLRTrend       = "SNLR Trend"
	ColActiveListings  = "Active Listings"
	ColMonthsInventory = "Months Inventory"
	ColAvgSPLP         = "Avg SP/LP"
	ColAvgDOM          = "Avg DOM"
	ColAvgPDOM         = "Avg PDOM"
)

// Metric returns the typed value of the named canonical column as a
// float, and whether it is set. Count fields are widened to float64.
func (r *MarketRecord) Metric(name string) (float64, bool) {
	switch name {
	case ColSales:
		if r.Sales != nil {
			return float64(*r.Sales), true
		}
	case ColDollarVolume:
		if r.DollarVolume != nil {
			return *r.DollarVolume, true
		}
	case ColAveragePrice:
		if r.AveragePrice != nil {
			return *r.AveragePrice, true
		}
	case ColMedianPrice:
		if r.MedianPrice != nil {
			return *r.MedianPrice, true
		}
	case ColNewListings:
		if r.NewListings != nil {
			return float64(*r.NewListings), true
		}
	case ColSNLRTrend:
		if r.SNLRTrend != nil {
			return *r.SNLRTrend, true
		}
	case ColActiveListings:
		if r.ActiveListings != nil {
			return float64(*r.ActiveListings), true
		}
	case ColMonthsInventory:
		if r.MonthsInventory != nil {
			return *r.MonthsInventory, true
		}
	case ColAvgSPLP:
		if r.AvgSPLP != nil {
			return *r.AvgSPLP, true
		}
	case ColAvgDOM:
		if r.AvgDOM != nil {
			return *r.AvgDOM, true
		}
	case ColAvgPDOM:
		if r.AvgPDOM != nil {
			return *r.AvgPDOM, true
		}
	}
	return 0, false
}
