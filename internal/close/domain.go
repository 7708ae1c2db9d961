package close

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
)

// AccountTotal is the activity of one revenue or expense account inside a
// period, excluding closing entries.
type AccountTotal struct {
	AccountID int64                `json:"account_id"`
	Code      string               `json:"code"`
	Name      string               `json:"name"`
	Type      accounts.AccountType `json:"type"`
	Debit     decimal.Decimal      `json:"-"`
	Credit    decimal.Decimal      `json:"-"`
	// Amount is the balance on the account's normal side: credit minus debit
	// for revenue, debit minus credit for expenses.
	Amount decimal.Decimal `json:"amount"`
}

// Preview reports what closing the period would post.
type Preview struct {
	PeriodID        int64           `json:"period_id"`
	PeriodName      string          `json:"period_name"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          periods.Status  `json:"status"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	NetIncome       decimal.Decimal `json:"net_income"`
	RevenueAccounts []AccountTotal  `json:"revenue_accounts"`
	ExpenseAccounts []AccountTotal  `json:"expense_accounts"`
	IsClosed        bool            `json:"is_closed"`
}

// Result summarises a completed close.
type Result struct {
	PeriodID              int64           `json:"period_id"`
	ClosingJournalEntryID *int64          `json:"closing_journal_entry_id,omitempty"`
	Reference             string          `json:"reference,omitempty"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	NetIncome             decimal.Decimal `json:"net_income"`
	RevenueAccountsClosed int             `json:"revenue_accounts_closed"`
	ExpenseAccountsClosed int             `json:"expense_accounts_closed"`
	ClosedAt              time.Time       `json:"closed_at"`
	ClosedBy              int64           `json:"closed_by,omitempty"`
}

// ReopenResult summarises a reopen.
type ReopenResult struct {
	PeriodID       int64     `json:"period_id"`
	DeletedEntries int64     `json:"deleted_entries"`
	ReopenedAt     time.Time `json:"reopened_at"`
	ReopenedBy     int64     `json:"reopened_by,omitempty"`
}
