package balances

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Repository is the storage port used by Service.
type Repository interface {
	Recalculate(ctx context.Context, timeout time.Duration) error
	List(ctx context.Context) ([]Balance, error)
	Drift(ctx context.Context) ([]Drift, error)
}

type repository struct {
	pool *pgxpool.Pool
	*Queries
}

// NewRepository returns a pool-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, Queries: NewQueries(pool)}
}

// Recalculate runs a full recompute in its own transaction so statement_timeout
// stays scoped to it.
func (r *repository) Recalculate(ctx context.Context, timeout time.Duration) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return NewQueries(tx).RecalculateAll(ctx, timeout)
	})
}
