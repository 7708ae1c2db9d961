package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest absolute difference still considered "zero" when
// comparing debit and credit totals.
var Tolerance = decimal.New(1, -2)

// Balanced reports whether |a-b| < Tolerance.
func Balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// IsZero reports whether amount rounds to zero cents.
func IsZero(amount decimal.Decimal) bool {
	return amount.Round(2).IsZero()
}

// HasCents reports whether amount has at most two decimal places.
func HasCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// Format renders an amount with two decimals.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseAmount parses a user supplied amount; blank input yields zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, Validationf("invalid amount %q", raw)
	}
	return amount, nil
}
