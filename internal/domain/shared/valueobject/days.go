package valueobject

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// IsHalfStep reports whether x is a multiple of 0.5, i.e. round(2x)/2 == x.
// Allowance days are recorded with half-day granularity.
func IsHalfStep(x decimal.Decimal) bool {
	return x.Mul(two).Round(0).Div(two).Equal(x)
}

// ParseDays parses a decimal day count, accepting a comma as decimal separator
func ParseDays(s string) (decimal.Decimal, error) {
	normalized := []rune(s)
	for i, r := range normalized {
		if r == ',' {
			normalized[i] = '.'
		}
	}
	return decimal.NewFromString(string(normalized))
}
