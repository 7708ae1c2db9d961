package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

const accountColumns = `id, code, name, type, parent_id, is_active, created_at, updated_at`

// Queries runs account statements against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get loads a single account.
func (q *Queries) Get(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(q.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// ByCodes loads accounts keyed by code. Missing codes are simply absent.
func (q *Queries) ByCodes(ctx context.Context, codes ...string) (map[string]Account, error) {
	rows, err := q.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ANY($1)`, codes)
	if err != nil {
		return nil, err
	}
	list, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Account, len(list))
	for _, a := range list {
		out[a.Code] = a
	}
	return out, nil
}

// ByIDs loads accounts keyed by id, taking a share lock so a concurrent
// deactivation cannot interleave with a posting.
func (q *Queries) ByIDs(ctx context.Context, ids []int64) (map[int64]Account, error) {
	rows, err := q.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) FOR SHARE`, ids)
	if err != nil {
		return nil, err
	}
	list, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Account, len(list))
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}

// List returns accounts ordered by code.
func (q *Queries) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	sql := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := q.db.Query(ctx, sql+" ORDER BY code", args...)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

// Insert creates an account.
func (q *Queries) Insert(ctx context.Context, code, name string, typ AccountType, parentID *int64) (Account, error) {
	a, err := scanAccount(q.db.QueryRow(ctx, `INSERT INTO accounts (code, name, type, parent_id, is_active)
VALUES ($1,$2,$3,$4,TRUE) RETURNING `+accountColumns, code, name, typ, parentID))
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return Account{}, shared.ErrDuplicateAccount
		}
		return Account{}, err
	}
	return a, nil
}

// Update changes code, name and parent.
func (q *Queries) Update(ctx context.Context, id int64, code, name string, parentID *int64) (Account, error) {
	a, err := scanAccount(q.db.QueryRow(ctx, `UPDATE accounts SET code=$2, name=$3, parent_id=$4, updated_at=NOW()
WHERE id=$1 RETURNING `+accountColumns, id, code, name, parentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		if db.IsUniqueViolation(err, "") {
			return Account{}, shared.ErrDuplicateAccount
		}
		return Account{}, err
	}
	return a, nil
}

// SetActive toggles is_active.
func (q *Queries) SetActive(ctx context.Context, id int64, active bool) error {
	cmd, err := q.db.Exec(ctx, `UPDATE accounts SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// Delete removes an unused account.
func (q *Queries) Delete(ctx context.Context, id int64) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.ErrAccountInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// HasEntries reports whether any journal line references the account.
func (q *Queries) HasEntries(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id=$1)`, id).Scan(&exists)
	return exists, err
}

// HasChildren reports whether other accounts use id as parent.
func (q *Queries) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_id=$1)`, id).Scan(&exists)
	return exists, err
}
