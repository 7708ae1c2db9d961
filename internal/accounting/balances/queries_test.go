package balances

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

// fakeLedger models the parts of PostgreSQL a recompute depends on: lines
// become visible to other transactions on commit, the advisory lock is held
// until commit, and the upsert writes every balance row from the statement's
// snapshot.
type fakeLedger struct {
	mu        sync.Mutex
	advisory  sync.Mutex
	committed map[int64]decimal.Decimal
	balances  map[int64]decimal.Decimal
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{committed: map[int64]decimal.Decimal{}, balances: map[int64]decimal.Decimal{}}
}

func (l *fakeLedger) begin() *fakeTx {
	return &fakeTx{ledger: l, pending: map[int64]decimal.Decimal{}}
}

func (l *fakeLedger) drift() map[int64]decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[int64]decimal.Decimal{}
	for acc, actual := range l.committed {
		if !l.balances[acc].Equal(actual) {
			out[acc] = actual.Sub(l.balances[acc])
		}
	}
	return out
}

type fakeTx struct {
	ledger     *fakeLedger
	pending    map[int64]decimal.Decimal
	locked     bool
	statements []string
	lockArgs   []any
	failOn     string
	failWith   error
}

func (t *fakeTx) post(accountID int64, net string) {
	t.pending[accountID] = t.pending[accountID].Add(decimal.RequireFromString(net))
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.failOn != "" && sql == t.failOn {
		return pgconn.CommandTag{}, t.failWith
	}
	t.statements = append(t.statements, sql)
	switch sql {
	case recalcLockSQL:
		t.lockArgs = args
		t.ledger.advisory.Lock()
		t.locked = true
	case recalculateSQL:
		t.ledger.mu.Lock()
		for acc, v := range t.ledger.committed {
			t.ledger.balances[acc] = v
		}
		for acc, v := range t.pending {
			t.ledger.balances[acc] = t.ledger.committed[acc].Add(v)
		}
		t.ledger.mu.Unlock()
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) commit() {
	t.ledger.mu.Lock()
	for acc, v := range t.pending {
		t.ledger.committed[acc] = t.ledger.committed[acc].Add(v)
	}
	t.ledger.mu.Unlock()
	if t.locked {
		t.locked = false
		t.ledger.advisory.Unlock()
	}
}

func TestRecalculateAllLocksBeforeUpsert(t *testing.T) {
	tx := newFakeLedger().begin()
	require.NoError(t, NewQueries(tx).RecalculateAll(context.Background(), 0))
	require.Equal(t, []string{recalcLockSQL, recalculateSQL}, tx.statements)
	require.Equal(t, []any{recalcLockKey}, tx.lockArgs)
	tx.commit()

	tx = newFakeLedger().begin()
	require.NoError(t, NewQueries(tx).RecalculateAll(context.Background(), 2*time.Second))
	require.Len(t, tx.statements, 3)
	require.Contains(t, tx.statements[0], "statement_timeout")
	require.Equal(t, recalcLockSQL, tx.statements[1])
	require.Equal(t, recalculateSQL, tx.statements[2])
	tx.commit()
}

func TestRecalculateAllStopsWhenLockTimesOut(t *testing.T) {
	tx := newFakeLedger().begin()
	tx.failOn = recalcLockSQL
	tx.failWith = &pgconn.PgError{Code: "57014"}

	err := NewQueries(tx).RecalculateAll(context.Background(), time.Second)
	require.True(t, shared.IsTimeout(err))
	require.NotContains(t, tx.statements, recalculateSQL)
}

func TestConcurrentPostingsKeepBalancesInSync(t *testing.T) {
	ledger := newFakeLedger()
	const cash, tuition, salary = 1, 2, 3

	a := ledger.begin()
	a.post(cash, "100.00")
	a.post(tuition, "-100.00")
	b := ledger.begin()
	b.post(salary, "40.00")
	b.post(cash, "-40.00")

	require.NoError(t, NewQueries(a).RecalculateAll(context.Background(), 0))

	done := make(chan error, 1)
	go func() {
		done <- NewQueries(b).RecalculateAll(context.Background(), 0)
	}()
	select {
	case err := <-done:
		t.Fatalf("second recalculation ran while the first transaction was open (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	a.commit()
	require.NoError(t, <-done)
	b.commit()

	require.Empty(t, ledger.drift())
	require.True(t, ledger.balances[tuition].Equal(decimal.RequireFromString("-100")))
	require.True(t, ledger.balances[cash].Equal(decimal.RequireFromString("60")))
}
