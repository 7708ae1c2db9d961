package close

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

// Repository is the storage port of the closing engine.
type Repository interface {
	GetPeriod(ctx context.Context, id int64) (periods.Period, error)
	PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the statements a close or reopen runs in one transaction.
type TxRepository interface {
	journals.Poster
	LockPeriod(ctx context.Context, id int64) (periods.Period, error)
	WellKnownAccounts(ctx context.Context) (map[string]accounts.Account, error)
	PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error)
	DeleteEntries(ctx context.Context, ids []int64) (int64, error)
	RecalculateBalances(ctx context.Context) error
	MarkClosed(ctx context.Context, periodID, entryID, actorID int64, at time.Time) error
	MarkReopened(ctx context.Context, periodID, actorID int64, at time.Time) error
}

type repository struct {
	pool          *pgxpool.Pool
	recalcTimeout time.Duration
	periods       *periods.Queries
	*Queries
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool, recalcTimeout time.Duration) Repository {
	return &repository{
		pool:          pool,
		recalcTimeout: recalcTimeout,
		periods:       periods.NewQueries(pool),
		Queries:       NewQueries(pool),
	}
}

func (r *repository) GetPeriod(ctx context.Context, id int64) (periods.Period, error) {
	return r.periods.Get(ctx, id)
}

// WithTx executes fn inside a read-committed transaction; LockPeriod serialises
// concurrent closes of one period.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{
			TxRepository: journals.NewTxRepository(tx, r.recalcTimeout),
			periods:      periods.NewQueries(tx),
			queries:      NewQueries(tx),
		})
	})
}

type txRepository struct {
	journals.TxRepository
	periods *periods.Queries
	queries *Queries
}

func (r *txRepository) LockPeriod(ctx context.Context, id int64) (periods.Period, error) {
	return r.periods.GetForUpdate(ctx, id)
}

func (r *txRepository) WellKnownAccounts(ctx context.Context) (map[string]accounts.Account, error) {
	return r.queries.WellKnownAccounts(ctx)
}

func (r *txRepository) PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error) {
	return r.queries.PeriodTotals(ctx, start, end)
}

func (r *txRepository) MarkClosed(ctx context.Context, periodID, entryID, actorID int64, at time.Time) error {
	return r.periods.MarkClosed(ctx, periodID, entryID, actorID, at)
}

func (r *txRepository) MarkReopened(ctx context.Context, periodID, actorID int64, at time.Time) error {
	return r.periods.MarkReopened(ctx, periodID, actorID, at)
}
