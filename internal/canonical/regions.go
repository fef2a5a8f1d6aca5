package canonical

import "strings"

// regionVariants maps every known raw region label onto its canonical
// name. The garbled entries ("EGswsiallimbury") are real OCR output
// from older bulletins.
var regionVariants = map[string]string{
	// Board-wide totals
	"TREB Total":      "TRREB Total",
	"TRREB Total":     "TRREB Total",
	"All TRREB Areas": "TRREB Total",
	"Total TREB":      "TRREB Total",
	"Total TRREB":     "TRREB Total",
	// East Gwillimbury
	"E. Gwillimbury":   "East Gwillimbury",
	"East Gwillimbury": "East Gwillimbury",
	"EGswsiallimbury":  "East Gwillimbury",
	"GEswsiallimbury":  "East Gwillimbury",
	"E Gwillimbury":    "East Gwillimbury",
	// Whitchurch-Stouffville
	"Whitchurch-Stouffville": "Whitchurch-Stouffville",
	"Stouffville":            "Whitchurch-Stouffville",
	"W. Stouffville":         "Whitchurch-Stouffville",
	"W Stouffville":          "Whitchurch-Stouffville",
	"Whitchurch Stouffville": "Whitchurch-Stouffville",
	// Bradford West Gwillimbury
	"Bradford West Gwillimbury": "Bradford West Gwillimbury",
	"Bradford West":             "Bradford West Gwillimbury",
	"Bradford":                  "Bradford West Gwillimbury",
	"Bradford W. Gwillimbury":   "Bradford West Gwillimbury",
	"Bradford W Gwillimbury":    "Bradford West Gwillimbury",
	// Adjala-Tosorontio
	"Adjala-Tosorontio": "Adjala-Tosorontio",
	"Adjala Tosorontio": "Adjala-Tosorontio",
	// King
	"King Township": "King",
	"King":          "King",
	"King Twp":      "King",
	"King Twp.":     "King",
	// Halton
	"Halton":        "Halton Region",
	"Halton Region": "Halton Region",
	// Toronto
	"Toronto, City of": "City of Toronto",
	"Toronto City":     "City of Toronto",
	"City of Toronto":  "City of Toronto",
	"Toronto W.":       "Toronto West",
	"Toronto West":     "Toronto West",
	"Toronto C.":       "Toronto Central",
	"Toronto Central":  "Toronto Central",
	"Toronto E.":       "Toronto East",
	"Toronto East":     "Toronto East",
}

// Region resolves a raw region label to its canonical name. On a miss
// the label is returned unchanged and ok is false; the caller decides
// whether an unmapped value is still a plausible region.
func Region(name string) (string, bool) {
	if canon, ok := regionVariants[name]; ok {
		return canon, true
	}
	return name, false
}

// AllRegions is the master list the validation engine checks the
// dataset against. 41 regions as of the bulletins covered.
var AllRegions = []string{
	"TRREB Total",
	"Halton Region", "Burlington", "Halton Hills", "Milton", "Oakville",
	"Peel Region", "Brampton", "Caledon", "Mississauga",
	"City of Toronto", "Toronto West", "Toronto Central", "Toronto East",
	"York Region", "Aurora", "East Gwillimbury", "Georgina", "King",
	"Markham", "Newmarket", "Richmond Hill", "Vaughan", "Whitchurch-Stouffville",
	"Durham Region", "Ajax", "Brock", "Clarington", "Oshawa", "Pickering",
	"Scugog", "Uxbridge", "Whitby",
	"Dufferin County", "Orangeville",
	"Simcoe County", "Adjala-Tosorontio", "Bradford West Gwillimbury",
	"Essa", "Innisfil", "New Tecumseth",
}

var allRegionSet = func() map[string]bool {
	m := make(map[string]bool, len(AllRegions))
	for _, r := range AllRegions {
		m[r] = true
	}
	return m
}()

// KnownRegion reports whether the name is in the master region list.
func KnownRegion(name string) bool {
	return allRegionSet[name]
}

// AnchorRegions are always present in a complete summary table. The
// normalizer uses them to locate the region column when extraction
// misplaced it, and the validation engine treats their absence as a
// sign of truncated extraction.
var AnchorRegions = []string{
	"TREB Total", "TRREB Total",
	"Halton Region", "Peel Region", "City of Toronto",
	"York Region", "Durham Region",
}

// ContainsAnchorRegion reports whether any anchor region name occurs
// as a substring of the given text. Used on joined column or row text
// where extraction may have fused a region name with its neighbours.
func ContainsAnchorRegion(text string) bool {
	for _, anchor := range AnchorRegions {
		if strings.Contains(text, anchor) {
			return true
		}
	}
	return false
}
