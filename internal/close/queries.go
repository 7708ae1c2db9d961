package close

import (
	"context"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Queries runs closing aggregates against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

// PeriodTotals aggregates active revenue and expense accounts over entries
// dated within [start, end]. Closing entries are excluded so a closed period
// still reports its own activity.
func (q *Queries) PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error) {
	rows, err := q.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM accounts a
JOIN journal_entry_lines l ON l.account_id = a.id
JOIN journal_entries e ON e.id = l.journal_entry_id
WHERE a.is_active
  AND a.type IN ('REVENUE', 'EXPENSE')
  AND e.entry_date BETWEEN $1 AND $2
  AND NOT e.is_closing
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountTotal
	for rows.Next() {
		var t AccountTotal
		if err := rows.Scan(&t.AccountID, &t.Code, &t.Name, &t.Type, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		t.Amount = t.Type.NormalBalance(t.Debit.Sub(t.Credit))
		out = append(out, t)
	}
	return out, rows.Err()
}

// WellKnownAccounts loads retained earnings and income summary by code.
func (q *Queries) WellKnownAccounts(ctx context.Context) (map[string]accounts.Account, error) {
	return accounts.NewQueries(q.db).ByCodes(ctx, accounts.CodeRetainedEarnings, accounts.CodeIncomeSummary)
}
