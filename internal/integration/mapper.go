package integration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// sourceID derives a stable id so redelivered events map to the same entry.
func sourceID(kind, id string) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("%s:%s", kind, id)))
}

func paymentKey(method string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodCash:
		return "payment.cash", nil
	case MethodBank:
		return "payment.bank", nil
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrInvalidEvent, method)
}
