package accounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Well-known singleton accounts required by period closing.
const (
	CodeRetainedEarnings = "3998"
	CodeIncomeSummary    = "3999"
)

// ParseAccountType normalises user input into an AccountType.
func ParseAccountType(raw string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return t, true
	}
	return "", false
}

// DebitNormal reports whether the account type increases with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// NormalBalance converts a raw debit-minus-credit balance into the sign
// convention used for reporting: positive on the account's normal side.
func (t AccountType) NormalBalance(raw decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return raw
	}
	return raw.Neg()
}

// Account models a chart of accounts node.
type Account struct {
	ID        int64       `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	ParentID  *int64      `json:"parent_id,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsWellKnown reports whether the account is retained earnings or income summary.
func (a Account) IsWellKnown() bool {
	return IsWellKnownCode(a.Code)
}

// IsWellKnownCode reports whether code is reserved for a closing account.
func IsWellKnownCode(code string) bool {
	return code == CodeRetainedEarnings || code == CodeIncomeSummary
}

// WellKnown bundles the accounts the closing engine posts against.
type WellKnown struct {
	RetainedEarnings Account
	IncomeSummary    Account
}

// CreateInput captures a new account request.
type CreateInput struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=200"`
	Type     string `json:"type" validate:"required"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateInput captures editable account fields.
type UpdateInput struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=200"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// ListFilter narrows account listings.
type ListFilter struct {
	Type   AccountType
	Active *bool
}
