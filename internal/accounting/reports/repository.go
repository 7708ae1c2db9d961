package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Repository provides account aggregates for reporting.
type Repository interface {
	Aggregate(ctx context.Context, q Query, excludeClosing bool) ([]AccountBalance, error)
}

// Queries aggregates journal lines against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

// NewRepository returns a pool-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return NewQueries(pool)
}

// Aggregate sums debits and credits per account for lines whose entry date is
// within q. Closing entries are left out when excludeClosing is set.
func (q *Queries) Aggregate(ctx context.Context, query Query, excludeClosing bool) ([]AccountBalance, error) {
	var (
		conds []string
		args  []any
	)
	if query.AsOf != nil {
		args = append(args, *query.AsOf)
		conds = append(conds, fmt.Sprintf("e.entry_date <= $%d", len(args)))
	} else {
		args = append(args, *query.Start, *query.End)
		conds = append(conds, fmt.Sprintf("e.entry_date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}
	if excludeClosing {
		conds = append(conds, "NOT e.is_closing")
	}
	sql := `SELECT a.id, a.code, a.name, a.type, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM accounts a
JOIN journal_entry_lines l ON l.account_id = a.id
JOIN journal_entries e ON e.id = l.journal_entry_id
WHERE ` + strings.Join(conds, " AND ") + `
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
