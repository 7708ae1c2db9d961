package balances

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Queries runs balance statements against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

const recalculateSQL = `INSERT INTO account_balances (account_id, debit_total, credit_total, balance, recalculated_at)
SELECT a.id,
       COALESCE(SUM(l.debit), 0),
       COALESCE(SUM(l.credit), 0),
       COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0),
       NOW()
FROM accounts a
LEFT JOIN journal_entry_lines l ON l.account_id = a.id
GROUP BY a.id
ON CONFLICT (account_id) DO UPDATE SET
    debit_total = EXCLUDED.debit_total,
    credit_total = EXCLUDED.credit_total,
    balance = EXCLUDED.balance,
    recalculated_at = EXCLUDED.recalculated_at`

// recalcLockKey names the transaction-level advisory lock held while balances
// are recomputed.
const recalcLockKey int64 = 0x5c401a

const recalcLockSQL = `SELECT pg_advisory_xact_lock($1)`

// RecalculateAll replaces every stored balance with the sum of its journal lines.
// When timeout is positive the statements are bounded both server-side
// (statement_timeout, transaction-local) and by the context deadline; expiry
// surfaces as a timeout error.
//
// Recomputes are serialised on an advisory lock held until the caller's
// transaction ends. The upsert runs as a separate statement after the lock is
// granted, so under READ COMMITTED its snapshot includes every journal line
// committed by the previous holder.
func (q *Queries) RecalculateAll(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := q.db.Exec(ctx, `SELECT set_config('statement_timeout', $1, true)`, fmt.Sprintf("%dms", timeout.Milliseconds())); err != nil {
			return classifyRecalc(ctx, err)
		}
	}
	if _, err := q.db.Exec(ctx, recalcLockSQL, recalcLockKey); err != nil {
		return classifyRecalc(ctx, err)
	}
	if _, err := q.db.Exec(ctx, recalculateSQL); err != nil {
		return classifyRecalc(ctx, err)
	}
	return nil
}

func classifyRecalc(ctx context.Context, err error) error {
	if db.IsQueryCanceled(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.Timeout(fmt.Errorf("recalculate balances: %w", err))
	}
	return fmt.Errorf("recalculate balances: %w", err)
}

// List returns the stored balances joined with their accounts, ordered by code.
func (q *Queries) List(ctx context.Context) ([]Balance, error) {
	rows, err := q.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type,
       COALESCE(b.debit_total, 0), COALESCE(b.credit_total, 0), COALESCE(b.balance, 0), b.recalculated_at
FROM accounts a
LEFT JOIN account_balances b ON b.account_id = a.id
ORDER BY a.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.DebitTotal, &b.CreditTotal, &b.Balance, &b.RecalculatedAt); err != nil {
			return nil, err
		}
		b.NormalBalance = b.Type.NormalBalance(b.Balance)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Drift compares stored balances with a fresh aggregation of journal lines.
func (q *Queries) Drift(ctx context.Context) ([]Drift, error) {
	rows, err := q.db.Query(ctx, `WITH actual AS (
    SELECT a.id, a.code, COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0) AS balance
    FROM accounts a
    LEFT JOIN journal_entry_lines l ON l.account_id = a.id
    GROUP BY a.id, a.code
)
SELECT actual.id, actual.code, COALESCE(b.balance, 0), actual.balance
FROM actual
LEFT JOIN account_balances b ON b.account_id = actual.id
WHERE COALESCE(b.balance, 0) <> actual.balance
ORDER BY actual.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.AccountID, &d.Code, &d.Stored, &d.Actual); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
