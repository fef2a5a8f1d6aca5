package normalize

import (
	"math"
	"strconv"
	"strings"

	"trrebwatch/pkg/contracts/domain"
)

// Cell coercion. Every function returns nil on failure: a cell that
// cannot be typed becomes a null value, never a pipeline error.

func prepare(s string) (string, bool) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
	switch s {
	case "", "-", "N/A", "n/a", "NaN":
		return "", false
	}
	return s, true
}

// Money parses a dollar amount, stripping the currency symbol and
// thousands separators: "$1,234,567" -> 1234567.
func Money(s string) *float64 {
	s, ok := prepare(s)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Count parses an integer count, stripping thousands separators.
func Count(s string) *int64 {
	s, ok := prepare(s)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// Some generations print counts with a decimal point.
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return nil
		}
		i := int64(f)
		return &i
	}
	return &v
}

// Ratio parses a percentage into a fraction: "58.5%" -> 0.585. Stored
// values are always fractions, rounded to four decimal places.
func Ratio(s string) *float64 {
	s, ok := prepare(s)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(s, "%", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	frac := math.Round(v/100*10000) / 10000
	return &frac
}

// Decimal parses a plain decimal value.
func Decimal(s string) *float64 {
	s, ok := prepare(s)
	if !ok {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Coerce types one cell according to its field kind, returning the
// value as a float and whether coercion succeeded.
func Coerce(kind domain.FieldKind, s string) (*float64, bool) {
	switch kind {
	case domain.KindCount:
		if v := Count(s); v != nil {
			f := float64(*v)
			return &f, true
		}
	case domain.KindMoney:
		if v := Money(s); v != nil {
			return v, true
		}
	case domain.KindRatio:
		if v := Ratio(s); v != nil {
			return v, true
		}
	case domain.KindDecimal:
		if v := Decimal(s); v != nil {
			return v, true
		}
	}
	return nil, false
}
