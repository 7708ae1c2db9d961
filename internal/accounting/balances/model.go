package balances

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
)

// Balance is the materialized running total of one account.
type Balance struct {
	AccountID      int64                `json:"account_id"`
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	Type           accounts.AccountType `json:"type"`
	DebitTotal     decimal.Decimal      `json:"debit_total"`
	CreditTotal    decimal.Decimal      `json:"credit_total"`
	Balance        decimal.Decimal      `json:"balance"`
	NormalBalance  decimal.Decimal      `json:"normal_balance"`
	RecalculatedAt *time.Time           `json:"recalculated_at,omitempty"`
}

// Drift reports an account whose stored balance disagrees with its journal lines.
type Drift struct {
	AccountID int64           `json:"account_id"`
	Code      string          `json:"code"`
	Stored    decimal.Decimal `json:"stored"`
	Actual    decimal.Decimal `json:"actual"`
}

// Difference is actual minus stored.
func (d Drift) Difference() decimal.Decimal {
	return d.Actual.Sub(d.Stored)
}
