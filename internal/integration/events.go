package integration

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods shared by fee, payroll and cash/bank events.
const (
	MethodCash = "cash"
	MethodBank = "bank"
)

// Cash/bank transaction directions.
const (
	DirectionReceipt = "receipt"
	DirectionPayment = "payment"
)

// FeePaymentPosted is emitted when the fees module records a payment receipt.
type FeePaymentPosted struct {
	ReceiptNo string          `json:"receipt_no"`
	StudentID string          `json:"student_id"`
	FeeType   string          `json:"fee_type"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	// OnAccount credits fees receivable instead of revenue, for invoices
	// already recognised.
	OnAccount bool `json:"on_account"`
}

// PayrollDisbursed is emitted when a payroll run is paid out.
type PayrollDisbursed struct {
	RunID  string          `json:"run_id"`
	Label  string          `json:"label"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
}

// CashBankTransaction is a manual receipt or payment against a counter account.
type CashBankTransaction struct {
	TxnID      string          `json:"txn_id"`
	Direction  string          `json:"direction"`
	Method     string          `json:"method"`
	CounterKey string          `json:"counter_key"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Memo       string          `json:"memo"`
}
