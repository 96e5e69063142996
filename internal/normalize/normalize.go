// Package normalize converts raw textual feed values into typed domain
// values. The feed uses decimal commas and space-grouped thousands, and
// routinely omits fields, so every function here degrades to a zero value
// instead of returning an error.
package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// Quantity parses a stock quantity. Decimal commas are accepted and the
// fractional part is truncated toward zero. Empty or malformed input
// yields 0; negative values are clamped to 0.
func Quantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	q := int(f)
	if q < 0 {
		return 0
	}
	return q
}

// Price parses a price. All whitespace is stripped first, including the
// NBSP thousands separators 1C exports use, then decimal commas are
// converted. Malformed input yields 0.
func Price(raw string) float64 {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Description builds the display description for an imported product,
// embedding the SKU and the non-empty group labels.
func Description(sku, group1, group2 string) string {
	var b strings.Builder
	b.WriteString("SKU: ")
	b.WriteString(sku)
	if group1 != "" {
		b.WriteString(" | Группа: ")
		b.WriteString(group1)
	}
	if group2 != "" {
		b.WriteString(" | Подгруппа: ")
		b.WriteString(group2)
	}
	return b.String()
}
