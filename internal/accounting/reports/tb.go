package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

const dateLayout = "2006-01-02"

// AccountBalance models an account with debit and credit totals aggregated
// from journal lines.
type AccountBalance struct {
	AccountID int64
	Code      string
	Name      string
	Type      accounts.AccountType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Balance is debit minus credit.
func (a AccountBalance) Balance() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// Query selects the window of a report: either AsOf, or Start and End.
type Query struct {
	AsOf  *time.Time
	Start *time.Time
	End   *time.Time
}

// AsOfQuery builds a point-in-time query.
func AsOfQuery(asOf time.Time) Query {
	return Query{AsOf: &asOf}
}

// RangeQuery builds an inclusive date range query.
func RangeQuery(start, end time.Time) Query {
	return Query{Start: &start, End: &end}
}

// Validate requires exactly one of AsOf or a complete Start/End range.
func (q Query) Validate() error {
	hasRange := q.Start != nil || q.End != nil
	switch {
	case q.AsOf != nil && hasRange:
		return shared.Validation("provide either as_of_date or start_date and end_date, not both")
	case q.AsOf == nil && !hasRange:
		return shared.Validation("provide either as_of_date or start_date and end_date")
	case hasRange && (q.Start == nil || q.End == nil):
		return shared.Validation("start_date and end_date are both required for a range")
	case hasRange && q.End.Before(*q.Start):
		return shared.Validation("end_date must not be before start_date")
	}
	return nil
}

// Key renders the query for cache keys.
func (q Query) Key() string {
	if q.AsOf != nil {
		return "asof:" + q.AsOf.Format(dateLayout)
	}
	if q.Start != nil && q.End != nil {
		return "range:" + q.Start.Format(dateLayout) + ":" + q.End.Format(dateLayout)
	}
	return "invalid"
}

// TrialBalanceRow is one account of the trial balance.
type TrialBalanceRow struct {
	Code    string               `json:"code"`
	Name    string               `json:"name"`
	Type    accounts.AccountType `json:"type"`
	Debit   decimal.Decimal      `json:"debit"`
	Credit  decimal.Decimal      `json:"credit"`
	Balance decimal.Decimal      `json:"balance"`
}

// Totals sums every row of the trial balance.
type Totals struct {
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Difference decimal.Decimal `json:"difference"`
}

// TrialBalance is the reconciled listing of account balances.
type TrialBalance struct {
	AsOf       *time.Time        `json:"as_of_date,omitempty"`
	Start      *time.Time        `json:"start_date,omitempty"`
	End        *time.Time        `json:"end_date,omitempty"`
	Accounts   []TrialBalanceRow `json:"accounts"`
	Totals     Totals            `json:"totals"`
	IsBalanced bool              `json:"is_balanced"`
}

// BuildTrialBalance converts account aggregates into trial balance rows sorted
// by code. Accounts with no activity and a zero balance are left out.
func BuildTrialBalance(q Query, balances []AccountBalance) TrialBalance {
	result := TrialBalance{
		AsOf:     q.AsOf,
		Start:    q.Start,
		End:      q.End,
		Accounts: make([]TrialBalanceRow, 0, len(balances)),
		Totals:   Totals{Debit: decimal.Zero, Credit: decimal.Zero},
	}
	for _, acc := range balances {
		if acc.Debit.IsZero() && acc.Credit.IsZero() && acc.Balance().IsZero() {
			continue
		}
		result.Accounts = append(result.Accounts, TrialBalanceRow{
			Code:    acc.Code,
			Name:    acc.Name,
			Type:    acc.Type,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Balance: acc.Balance(),
		})
		result.Totals.Debit = result.Totals.Debit.Add(acc.Debit)
		result.Totals.Credit = result.Totals.Credit.Add(acc.Credit)
	}
	sort.Slice(result.Accounts, func(i, j int) bool {
		return result.Accounts[i].Code < result.Accounts[j].Code
	})
	result.Totals.Difference = result.Totals.Debit.Sub(result.Totals.Credit)
	result.IsBalanced = shared.Balanced(result.Totals.Debit, result.Totals.Credit)
	return result
}
