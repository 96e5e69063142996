package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "Decimal comma truncates", input: "12,5", expected: 12},
		{name: "Decimal dot truncates", input: "7.9", expected: 7},
		{name: "Plain integer", input: "42", expected: 42},
		{name: "Empty string", input: "", expected: 0},
		{name: "Whitespace only", input: "   ", expected: 0},
		{name: "Garbage", input: "abc", expected: 0},
		{name: "Negative clamped", input: "-3", expected: 0},
		{name: "Surrounding spaces", input: " 15 ", expected: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Quantity(tt.input))
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "Space-grouped with decimal comma", input: "1 234,50", expected: 1234.50},
		{name: "NBSP thousands separator", input: "12 500,00", expected: 12500.00},
		{name: "Plain decimal", input: "99.90", expected: 99.90},
		{name: "Integer", input: "100", expected: 100},
		{name: "Empty", input: "", expected: 0},
		{name: "Garbage", input: "n/a", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Price(tt.input), 0.0001)
		})
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "SKU: A1 | Группа: Напитки | Подгруппа: Соки",
		Description("A1", "Напитки", "Соки"))
	assert.Equal(t, "SKU: A1 | Группа: Напитки", Description("A1", "Напитки", ""))
	assert.Equal(t, "SKU: A1", Description("A1", "", ""))
	// empty SKU still produces the prefix, matching the feed contract
	assert.Equal(t, "SKU:  | Подгруппа: Соки", Description("", "", "Соки"))
}
