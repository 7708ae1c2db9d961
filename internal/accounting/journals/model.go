package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/shared"
)

// Entry is a dated, balanced group of journal lines.
type Entry struct {
	ID           int64      `json:"id"`
	JournalID    int64      `json:"journal_id"`
	EntryDate    time.Time  `json:"entry_date"`
	Description  string     `json:"description"`
	Reference    string     `json:"reference"`
	SourceModule string     `json:"source_module,omitempty"`
	SourceID     *uuid.UUID `json:"source_id,omitempty"`
	IsClosing    bool       `json:"is_closing"`
	CreatedBy    *int64     `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Lines        []Line     `json:"lines,omitempty"`
}

// Line stores a debit or credit against one account.
type Line struct {
	ID          int64           `json:"id"`
	EntryID     int64           `json:"journal_entry_id"`
	AccountID   int64           `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Totals sums the debit and credit sides of the entry.
func (e Entry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// ListFilter narrows entry listings.
type ListFilter struct {
	AccountID int64
	Start     *time.Time
	End       *time.Time
	Page      int
	PerPage   int
}

// Page is a paginated entry listing.
type Page struct {
	Entries    []Entry           `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}
