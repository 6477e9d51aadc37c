package feed

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePrice converts a locale-formatted price string into an exact
// decimal. Spaces are treated as grouping separators and removed; when a
// comma is present it is the decimal separator and any dots are grouping.
// This deliberately handles only comma-as-decimal and space-as-grouping,
// not full locale-aware number parsing: the upstream feed mixes separator
// conventions but never beyond these two.
//
//	"1.234,56"  -> 1234.56
//	"12 340,50" -> 12340.50
//	"99.90"     -> 99.90
func NormalizePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, " ", "")
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	if cleaned == "" {
		return decimal.Decimal{}, &InvalidPriceError{Raw: raw}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, &InvalidPriceError{Raw: raw}
	}
	return d, nil
}
