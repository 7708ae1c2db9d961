package mappings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Resolver looks up mapped accounts.
type Resolver interface {
	Get(ctx context.Context, module, key string) (AccountMapping, error)
}

// Queries runs mapping statements against a pool or transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

// Get resolves an account mapping for the specified key.
func (q *Queries) Get(ctx context.Context, module, key string) (AccountMapping, error) {
	module, key = Normalize(module, key)
	if module == "" || key == "" {
		return AccountMapping{}, shared.Validation("mapping module and key are required")
	}
	var mapping AccountMapping
	err := q.db.QueryRow(ctx, `SELECT module, key, account_id, created_at, updated_at FROM account_mappings WHERE module=$1 AND key=$2`, module, key).
		Scan(&mapping.Module, &mapping.Key, &mapping.AccountID, &mapping.CreatedAt, &mapping.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountMapping{}, &shared.Error{Kind: shared.KindConfiguration, Message: "account mapping not found: " + module + "/" + key, Err: shared.ErrMappingNotFound}
		}
		return AccountMapping{}, err
	}
	return mapping, nil
}

// Upsert points module/key at accountID.
func (q *Queries) Upsert(ctx context.Context, module, key string, accountID int64) error {
	module, key = Normalize(module, key)
	_, err := q.db.Exec(ctx, `INSERT INTO account_mappings (module, key, account_id)
VALUES ($1, $2, $3)
ON CONFLICT (module, key) DO UPDATE SET account_id = EXCLUDED.account_id, updated_at = NOW()`, module, key, accountID)
	if db.IsForeignKeyViolation(err) {
		return shared.ErrAccountNotFound
	}
	return err
}
