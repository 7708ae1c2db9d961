package journals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

const dateLayout = "2006-01-02"

// LineInput describes one line of a posting request.
type LineInput struct {
	AccountID   int64           `json:"account_id" validate:"required,gt=0"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" validate:"max=500"`
}

// CreateEntryInput is the JSON body of POST /journal-entries.
type CreateEntryInput struct {
	JournalID   int64       `json:"journal_id" validate:"omitempty,gt=0"`
	EntryDate   string      `json:"entry_date" validate:"required"`
	Description string      `json:"description" validate:"required,max=500"`
	Reference   string      `json:"reference" validate:"required,max=100"`
	Lines       []LineInput `json:"lines" validate:"required,dive"`
}

// Draft converts the request into a posting draft. journalID is used when the
// request does not name a journal.
func (in CreateEntryInput) Draft(journalID int64) (Draft, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(in.EntryDate))
	if err != nil {
		return Draft{}, shared.Validation("entry_date must be a date in YYYY-MM-DD format")
	}
	if in.JournalID > 0 {
		journalID = in.JournalID
	}
	return Draft{
		JournalID:   journalID,
		EntryDate:   date,
		Description: in.Description,
		Reference:   in.Reference,
		Lines:       in.Lines,
	}, nil
}

// Draft is a journal entry ready to be posted.
type Draft struct {
	JournalID    int64
	EntryDate    time.Time
	Description  string
	Reference    string
	SourceModule string
	SourceID     *uuid.UUID
	IsClosing    bool
	CreatedBy    int64
	Lines        []LineInput
}

// Validate enforces double-entry rules: at least two lines, exactly one
// positive side per line, at most two decimals, and debits equal to credits.
func (d Draft) Validate() error {
	if d.JournalID <= 0 {
		return shared.Validation("journal_id is required")
	}
	if d.EntryDate.IsZero() {
		return shared.Validation("entry_date is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return shared.Validation("description is required")
	}
	if strings.TrimSpace(d.Reference) == "" {
		return shared.Validation("reference is required")
	}
	if len(d.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range d.Lines {
		if line.AccountID <= 0 {
			return shared.Validationf("line %d: account_id is required", idx+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.Validationf("line %d: amounts must not be negative", idx+1)
		}
		if !shared.HasCents(line.Debit) || !shared.HasCents(line.Credit) {
			return shared.Validationf("line %d: amounts allow at most two decimals", idx+1)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return shared.ErrDebitCreditExclusive
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !shared.Balanced(debit, credit) {
		return shared.ErrUnbalanced
	}
	return nil
}

func (d Draft) accountIDs() []int64 {
	seen := make(map[int64]struct{}, len(d.Lines))
	ids := make([]int64, 0, len(d.Lines))
	for _, line := range d.Lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}
