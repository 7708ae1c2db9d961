package mappings

import (
	"strings"
	"time"
)

// Integration modules that post into the ledger.
const (
	ModuleFees     = "FEES"
	ModulePayroll  = "PAYROLL"
	ModuleCashBank = "CASH_BANK"
)

// AccountMapping links an integration key to a ledger account.
type AccountMapping struct {
	Module    string    `json:"module"`
	Key       string    `json:"key"`
	AccountID int64     `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize upper-cases the module and trims the key.
func Normalize(module, key string) (string, string) {
	return strings.ToUpper(strings.TrimSpace(module)), strings.TrimSpace(key)
}
