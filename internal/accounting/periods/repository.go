package periods

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the storage port used by Service.
type Repository interface {
	List(ctx context.Context, status Status) ([]Period, error)
	Get(ctx context.Context, id int64) (Period, error)
	Overlaps(ctx context.Context, start, end time.Time) (bool, error)
	Insert(ctx context.Context, d Draft) (Period, error)
}

type repository struct {
	*Queries
}

// NewRepository returns a pool-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{Queries: NewQueries(pool)}
}
