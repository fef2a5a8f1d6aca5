package domain

// PropertyType identifies which Market Watch summary table a record
// came from. The bulletin publishes one page aggregating every home
// type and one page for detached homes only.
type PropertyType string

const (
	PropertyAllHomeTypes PropertyType = "all_home_types"
	PropertyDetached     PropertyType = "detached"
)

// PropertyTypes lists every supported property type.
var PropertyTypes = []PropertyType{PropertyAllHomeTypes, PropertyDetached}

// Valid reports whether the property type is one of the supported values.
func (p PropertyType) Valid() bool {
	return p == PropertyAllHomeTypes || p == PropertyDetached
}

// Era identifies the publication format generation of a bulletin.
// TRREB changed the report layout twice over the covered decade:
// once in January 2020 and again in April 2022.
type Era string

const (
	EraPre2020    Era = "pre-2020"
	EraMidPeriod  Era = "mid-period"
	EraPost2022   Era = "post-2022"
)

// Eras lists every format generation.
var Eras = []Era{EraPre2020, EraMidPeriod, EraPost2022}

// RegionType classifies a row of the dataset by its place in the
// TRREB region hierarchy.
type RegionType string

const (
	RegionTypeTotal        RegionType = "Total"
	RegionTypeRegion       RegionType = "Region"
	RegionTypeMunicipality RegionType = "Municipality"
)

// FieldKind is the semantic type of a metric column.
type FieldKind int

const (
	// KindCount is a non-negative integer (sales, listings).
	KindCount FieldKind = iota
	// KindMoney is a non-negative dollar amount; source text carries
	// currency symbols and thousands separators.
	KindMoney
	// KindRatio is stored as a fraction. Source text is a percentage
	// such as "58.5%".
	KindRatio
	// KindDecimal is a plain one-decimal-place number (days on
	// market, months of inventory).
	KindDecimal
)

// Field describes one expected metric column of a summary table.
type Field struct {
	Name string
	Kind FieldKind
}
