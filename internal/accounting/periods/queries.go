package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

const periodColumns = `id, period_name, period_type, start_date, end_date, status, closed_at, closed_by,
closing_journal_entry_id, reopened_at, reopened_by, created_at, updated_at`

// Queries runs period statements against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy,
		&p.ClosingJournalEntryID, &p.ReopenedAt, &p.ReopenedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// Get loads a period without locking.
func (q *Queries) Get(ctx context.Context, id int64) (Period, error) {
	return scanPeriod(q.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE id=$1`, id))
}

// GetForUpdate loads a period holding a row lock until the transaction ends.
// Concurrent close/reopen calls on the same period serialise here.
func (q *Queries) GetForUpdate(ctx context.Context, id int64) (Period, error) {
	return scanPeriod(q.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE id=$1 FOR UPDATE`, id))
}

// CoveringForShare returns the periods whose range contains date, share-locked so
// a concurrent close waits for the posting transaction to finish.
func (q *Queries) CoveringForShare(ctx context.Context, date time.Time) ([]Period, error) {
	rows, err := q.db.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE $1::date BETWEEN start_date AND end_date ORDER BY start_date FOR SHARE`, date)
	if err != nil {
		return nil, err
	}
	return collectPeriods(rows)
}

// List returns periods ordered by start date, optionally filtered by status.
func (q *Queries) List(ctx context.Context, status Status) ([]Period, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = q.db.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods ORDER BY start_date`)
	} else {
		rows, err = q.db.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE status=$1 ORDER BY start_date`, status)
	}
	if err != nil {
		return nil, err
	}
	return collectPeriods(rows)
}

// Overlaps reports whether any period intersects [start, end].
func (q *Queries) Overlaps(ctx context.Context, start, end time.Time) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounting_periods
WHERE daterange(start_date, end_date, '[]') && daterange($1::date, $2::date, '[]'))`, start, end).Scan(&exists)
	return exists, err
}

// Insert creates an open period.
func (q *Queries) Insert(ctx context.Context, d Draft) (Period, error) {
	p, err := scanPeriod(q.db.QueryRow(ctx, `INSERT INTO accounting_periods (period_name, period_type, start_date, end_date, status)
VALUES ($1,$2,$3,$4,'open') RETURNING `+periodColumns, d.Name, d.Type, d.StartDate, d.EndDate))
	if err != nil && db.IsExclusionViolation(err) {
		return Period{}, shared.ErrPeriodOverlap
	}
	return p, err
}

// MarkClosed flips the period to closed and links the closing entry.
func (q *Queries) MarkClosed(ctx context.Context, id, entryID, actorID int64, at time.Time) error {
	_, err := q.db.Exec(ctx, `UPDATE accounting_periods SET status='closed', closed_at=$2, closed_by=$3,
closing_journal_entry_id=$4, updated_at=$2 WHERE id=$1`, id, at, nullID(actorID), nullID(entryID))
	return err
}

// MarkReopened returns the period to open, clearing the close stamps.
func (q *Queries) MarkReopened(ctx context.Context, id, actorID int64, at time.Time) error {
	_, err := q.db.Exec(ctx, `UPDATE accounting_periods SET status='open', closed_at=NULL, closed_by=NULL,
closing_journal_entry_id=NULL, reopened_at=$2, reopened_by=$3, updated_at=$2 WHERE id=$1`, id, at, nullID(actorID))
	return err
}

func collectPeriods(rows pgx.Rows) ([]Period, error) {
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
