package canonical

import "trrebwatch/pkg/contracts/domain"

// BoardTotal is the board-wide total row every summary table starts
// with.
const BoardTotal = "TRREB Total"

// hierarchy maps each parent region to its member municipalities.
// Mirrors the structure of the bulletin's summary pages.
var hierarchy = map[string][]string{
	BoardTotal: {
		"Halton Region", "Peel Region", "City of Toronto", "York Region",
		"Durham Region", "Dufferin County", "Simcoe County",
	},
	"Halton Region":   {"Burlington", "Halton Hills", "Milton", "Oakville"},
	"Peel Region":     {"Brampton", "Caledon", "Mississauga"},
	"City of Toronto": {"Toronto West", "Toronto Central", "Toronto East"},
	"York Region": {
		"Aurora", "East Gwillimbury", "Georgina", "King", "Markham",
		"Newmarket", "Richmond Hill", "Vaughan", "Whitchurch-Stouffville",
	},
	"Durham Region": {
		"Ajax", "Brock", "Clarington", "Oshawa", "Pickering",
		"Scugog", "Uxbridge", "Whitby",
	},
	"Dufferin County": {"Orangeville"},
	"Simcoe County": {
		"Adjala-Tosorontio", "Bradford West Gwillimbury", "Essa",
		"Innisfil", "New Tecumseth",
	},
}

var childToParent = func() map[string]string {
	m := make(map[string]string)
	for parent, children := range hierarchy {
		for _, child := range children {
			m[child] = parent
		}
	}
	return m
}()

// ParentOf returns the parent of a region, or the NoParent sentinel
// for the board total and for regions outside the known hierarchy.
func ParentOf(region string) string {
	if parent, ok := childToParent[region]; ok {
		return parent
	}
	return domain.NoParent
}

// TypeOf classifies a region name within the hierarchy.
func TypeOf(region string) domain.RegionType {
	switch {
	case region == BoardTotal:
		return domain.RegionTypeTotal
	case hierarchy[region] != nil:
		return domain.RegionTypeRegion
	default:
		return domain.RegionTypeMunicipality
	}
}
