package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/mappings"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

// ErrInvalidEvent marks events that can never be posted; workers should not retry them.
var ErrInvalidEvent = errors.New("integration: invalid event")

// Ledger exposes journal posting operations required by integrations.
type Ledger interface {
	CreateEntry(ctx context.Context, d journals.Draft) (journals.Entry, error)
}

// AccountMappingRepository provides mapping lookups.
type AccountMappingRepository interface {
	Get(ctx context.Context, module, key string) (mappings.AccountMapping, error)
}

// Hooks wires events from the fees, payroll and cash/bank modules into the general ledger.
type Hooks struct {
	ledger      Ledger
	mappingRepo AccountMappingRepository
	journalID   int64
	logger      *slog.Logger
}

// NewHooks constructs integration hooks posting into journalID.
func NewHooks(ledger Ledger, mappingRepo AccountMappingRepository, journalID int64, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{ledger: ledger, mappingRepo: mappingRepo, journalID: journalID, logger: logger}
}

func (h *Hooks) resolveAccount(ctx context.Context, module, key string) (int64, error) {
	mapping, err := h.mappingRepo.Get(ctx, module, key)
	if err != nil {
		return 0, err
	}
	return mapping.AccountID, nil
}

// post writes the draft, treating a duplicate reference as already posted.
func (h *Hooks) post(ctx context.Context, d journals.Draft) error {
	d.JournalID = h.journalID
	_, err := h.ledger.CreateEntry(ctx, d)
	if errors.Is(err, shared.ErrDuplicateReference) {
		h.logger.Info("integration entry already posted", slog.String("reference", d.Reference))
		return nil
	}
	return err
}

func (h *Hooks) ready() bool {
	return h != nil && h.ledger != nil && h.mappingRepo != nil
}

// HandleFeePayment posts Dr cash/bank, Cr fee revenue (or fees receivable).
func (h *Hooks) HandleFeePayment(ctx context.Context, evt FeePaymentPosted) error {
	if !h.ready() {
		return nil
	}
	if evt.ReceiptNo == "" || evt.PaidAt.IsZero() {
		return fmt.Errorf("%w: fee payment requires receipt number and date", ErrInvalidEvent)
	}
	amount := round2(evt.Amount)
	if !amount.IsPositive() {
		return nil
	}
	payKey, err := paymentKey(evt.Method)
	if err != nil {
		return err
	}
	cashAccount, err := h.resolveAccount(ctx, mappings.ModuleFees, payKey)
	if err != nil {
		return err
	}
	creditKey := "receivable"
	if !evt.OnAccount {
		feeType := strings.ToLower(strings.TrimSpace(evt.FeeType))
		if feeType == "" {
			feeType = "tuition"
		}
		creditKey = "revenue." + feeType
	}
	creditAccount, err := h.resolveAccount(ctx, mappings.ModuleFees, creditKey)
	if err != nil {
		return err
	}
	id := sourceID("FEE", evt.ReceiptNo)
	return h.post(ctx, journals.Draft{
		EntryDate:    evt.PaidAt,
		Description:  fmt.Sprintf("Fee payment %s (student %s)", evt.ReceiptNo, evt.StudentID),
		Reference:    "FEE-" + evt.ReceiptNo,
		SourceModule: mappings.ModuleFees,
		SourceID:     &id,
		Lines: []journals.LineInput{
			{AccountID: cashAccount, Debit: amount},
			{AccountID: creditAccount, Credit: amount},
		},
	})
}

// HandlePayrollDisbursement posts Dr salary expense, Cr cash/bank.
func (h *Hooks) HandlePayrollDisbursement(ctx context.Context, evt PayrollDisbursed) error {
	if !h.ready() {
		return nil
	}
	if evt.RunID == "" || evt.PaidAt.IsZero() {
		return fmt.Errorf("%w: payroll disbursement requires run id and date", ErrInvalidEvent)
	}
	amount := round2(evt.Amount)
	if !amount.IsPositive() {
		return nil
	}
	payKey, err := paymentKey(evt.Method)
	if err != nil {
		return err
	}
	expenseAccount, err := h.resolveAccount(ctx, mappings.ModulePayroll, "salary.expense")
	if err != nil {
		return err
	}
	cashAccount, err := h.resolveAccount(ctx, mappings.ModulePayroll, payKey)
	if err != nil {
		return err
	}
	label := evt.Label
	if label == "" {
		label = evt.RunID
	}
	id := sourceID("PAY", evt.RunID)
	return h.post(ctx, journals.Draft{
		EntryDate:    evt.PaidAt,
		Description:  "Payroll disbursement " + label,
		Reference:    "PAY-" + evt.RunID,
		SourceModule: mappings.ModulePayroll,
		SourceID:     &id,
		Lines: []journals.LineInput{
			{AccountID: expenseAccount, Debit: amount},
			{AccountID: cashAccount, Credit: amount},
		},
	})
}

// HandleCashBankTransaction posts a receipt (Dr cash/bank, Cr counter) or a
// payment (Dr counter, Cr cash/bank).
func (h *Hooks) HandleCashBankTransaction(ctx context.Context, evt CashBankTransaction) error {
	if !h.ready() {
		return nil
	}
	if evt.TxnID == "" || evt.Date.IsZero() || strings.TrimSpace(evt.CounterKey) == "" {
		return fmt.Errorf("%w: cash/bank transaction requires id, date and counter key", ErrInvalidEvent)
	}
	amount := round2(evt.Amount)
	if !amount.IsPositive() {
		return nil
	}
	payKey, err := paymentKey(evt.Method)
	if err != nil {
		return err
	}
	cashAccount, err := h.resolveAccount(ctx, mappings.ModuleCashBank, payKey)
	if err != nil {
		return err
	}
	counterAccount, err := h.resolveAccount(ctx, mappings.ModuleCashBank, evt.CounterKey)
	if err != nil {
		return err
	}
	var lines []journals.LineInput
	switch strings.ToLower(evt.Direction) {
	case DirectionReceipt:
		lines = []journals.LineInput{
			{AccountID: cashAccount, Debit: amount},
			{AccountID: counterAccount, Credit: amount},
		}
	case DirectionPayment:
		lines = []journals.LineInput{
			{AccountID: counterAccount, Debit: amount},
			{AccountID: cashAccount, Credit: amount},
		}
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidEvent, evt.Direction)
	}
	memo := evt.Memo
	if memo == "" {
		memo = fmt.Sprintf("Cash/bank %s %s", evt.Direction, evt.TxnID)
	}
	id := sourceID("CB", evt.TxnID)
	return h.post(ctx, journals.Draft{
		EntryDate:    evt.Date,
		Description:  memo,
		Reference:    "CB-" + evt.TxnID,
		SourceModule: mappings.ModuleCashBank,
		SourceID:     &id,
		Lines:        lines,
	})
}
