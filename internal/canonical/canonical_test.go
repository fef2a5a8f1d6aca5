package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trrebwatch/pkg/contracts/domain"
)

func TestColumn(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		mapped bool
	}{
		{"# of Sales", domain.ColSales, true},
		{"Sales1", domain.ColSales, true},
		{"Avg. SP/LP4", domain.ColAvgSPLP, true},
		{"SNLR (Trend) 9", domain.ColSNLRTrend, true},
		{"Mos. Inv. (Trend)", domain.ColMonthsInventory, true},
		{"Avg. LDOM", domain.ColAvgDOM, true},
		// Unmapped labels pass through unchanged; no fuzzy matching.
		{"Avg.SP/LP", "Avg.SP/LP", false},
		{"Benchmark Price", "Benchmark Price", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Column(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.mapped, ok)
		})
	}
}

func TestRegion(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		mapped bool
	}{
		{"TREB Total", "TRREB Total", true},
		{"All TRREB Areas", "TRREB Total", true},
		{"E. Gwillimbury", "East Gwillimbury", true},
		{"EGswsiallimbury", "East Gwillimbury", true}, // OCR garbage from old bulletins
		{"King Twp.", "King", true},
		{"Toronto, City of", "City of Toronto", true},
		{"Halton", "Halton Region", true},
		{"Oakville", "Oakville", false}, // already canonical, not a variant entry
		{"Atlantis", "Atlantis", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Region(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.mapped, ok)
		})
	}
}

func TestAllRegions_CoversHierarchy(t *testing.T) {
	assert.Len(t, AllRegions, 41)
	assert.True(t, KnownRegion(BoardTotal))
	for parent, children := range hierarchy {
		assert.True(t, KnownRegion(parent), "parent %q missing from master list", parent)
		for _, child := range children {
			assert.True(t, KnownRegion(child), "child %q missing from master list", child)
		}
	}
}

func TestParentOf(t *testing.T) {
	assert.Equal(t, "Halton Region", ParentOf("Oakville"))
	assert.Equal(t, "City of Toronto", ParentOf("Toronto East"))
	assert.Equal(t, BoardTotal, ParentOf("Simcoe County"))
	assert.Equal(t, domain.NoParent, ParentOf(BoardTotal))
	assert.Equal(t, domain.NoParent, ParentOf("Atlantis"))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, domain.RegionTypeTotal, TypeOf(BoardTotal))
	assert.Equal(t, domain.RegionTypeRegion, TypeOf("York Region"))
	assert.Equal(t, domain.RegionTypeMunicipality, TypeOf("Markham"))
	// Unrecognized names fall through to Municipality.
	assert.Equal(t, domain.RegionTypeMunicipality, TypeOf("Atlantis"))
}

func TestContainsAnchorRegion(t *testing.T) {
	assert.True(t, ContainsAnchorRegion("TRREB Total 1,234 $850,000"))
	assert.True(t, ContainsAnchorRegion("something City of Toronto something"))
	assert.False(t, ContainsAnchorRegion("1,234 5,678 $850,000"))
}

func TestLooksLikeHeader(t *testing.T) {
	assert.True(t, LooksLikeHeader("Sales Dollar Volume Average Price"))
	assert.True(t, LooksLikeHeader("# of Sales New Listings"))
	assert.False(t, LooksLikeHeader("TRREB Total 1,234 $850,000"))
}
