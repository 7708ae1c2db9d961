package journals

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/balances"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	Get(ctx context.Context, id int64) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int, error)
	EntriesForAccount(ctx context.Context, filter ListFilter) ([]Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Poster is the subset of a transaction needed to write an entry.
type Poster interface {
	AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	InsertEntry(ctx context.Context, d Draft) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error)
}

// TxRepository exposes methods available within a posting transaction.
type TxRepository interface {
	Poster
	PeriodsCovering(ctx context.Context, date time.Time) ([]periods.Period, error)
	DeleteEntries(ctx context.Context, ids []int64) (int64, error)
	RecalculateBalances(ctx context.Context) error
}

type repository struct {
	pool          *pgxpool.Pool
	recalcTimeout time.Duration
	*Queries
}

// NewRepository returns a pool-backed Repository. recalcTimeout bounds the
// balance recalculation that follows every posting.
func NewRepository(pool *pgxpool.Pool, recalcTimeout time.Duration) Repository {
	return &repository{pool: pool, recalcTimeout: recalcTimeout, Queries: NewQueries(pool)}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx, r.recalcTimeout))
	})
}

type txRepository struct {
	*Queries
	accounts      *accounts.Queries
	periods       *periods.Queries
	balances      *balances.Queries
	recalcTimeout time.Duration
}

// NewTxRepository binds the journal transaction port to conn, which is
// normally a pgx.Tx owned by the caller.
func NewTxRepository(conn db.DBTX, recalcTimeout time.Duration) TxRepository {
	return &txRepository{
		Queries:       NewQueries(conn),
		accounts:      accounts.NewQueries(conn),
		periods:       periods.NewQueries(conn),
		balances:      balances.NewQueries(conn),
		recalcTimeout: recalcTimeout,
	}
}

func (r *txRepository) AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	return r.accounts.ByIDs(ctx, ids)
}

func (r *txRepository) PeriodsCovering(ctx context.Context, date time.Time) ([]periods.Period, error) {
	return r.periods.CoveringForShare(ctx, date)
}

func (r *txRepository) RecalculateBalances(ctx context.Context) error {
	return r.balances.RecalculateAll(ctx, r.recalcTimeout)
}
