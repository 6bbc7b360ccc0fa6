package storefront

import (
	"strconv"
	"unicode/utf8"
)

// parsePrice coerces a raw form value to a non-negative price. Empty,
// unparsable or negative input becomes 0.
func parsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// truncate limits s to max bytes without splitting a rune. Limits match the
// column widths of the original schema, so oversized input is clipped rather
// than rejected.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
