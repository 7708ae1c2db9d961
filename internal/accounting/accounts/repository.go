package accounts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence port of the chart of accounts.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	Insert(ctx context.Context, code, name string, typ AccountType, parentID *int64) (Account, error)
	Update(ctx context.Context, id int64, code, name string, parentID *int64) (Account, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	HasEntries(ctx context.Context, id int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	*Queries
}

// NewRepository returns a pool-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{Queries: NewQueries(pool)}
}
