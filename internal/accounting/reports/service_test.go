package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

type countingRepo struct {
	mu             sync.Mutex
	calls          int
	excludeClosing []bool
	rows           []AccountBalance
}

func (r *countingRepo) Aggregate(ctx context.Context, q Query, excludeClosing bool) ([]AccountBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.excludeClosing = append(r.excludeClosing, excludeClosing)
	return r.rows, nil
}

func newCachedService(t *testing.T, repo Repository) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache, nil), cache
}

func TestGenerateCachesUntilBump(t *testing.T) {
	repo := &countingRepo{rows: sampleBalances()}
	svc, cache := newCachedService(t, repo)
	ctx := context.Background()
	q := AsOfQuery(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	first, err := svc.Generate(ctx, q)
	require.NoError(t, err)
	second, err := svc.Generate(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
	require.True(t, first.Totals.Debit.Equal(second.Totals.Debit))
	require.True(t, second.IsBalanced)

	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Generate(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestGenerateRejectsAmbiguousQuery(t *testing.T) {
	svc, _ := newCachedService(t, &countingRepo{})
	_, err := svc.Generate(context.Background(), Query{})
	require.True(t, shared.IsValidation(err))
}

func TestProfitAndLossExcludesClosingEntries(t *testing.T) {
	repo := &countingRepo{rows: sampleBalances()}
	svc := NewService(repo, nil, nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pl, err := svc.ProfitAndLoss(context.Background(), start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	require.True(t, pl.NetIncome.Equal(d("600")))
	require.Equal(t, []bool{true}, repo.excludeClosing)
}

func TestFinancialStatementsBuildsBothReports(t *testing.T) {
	repo := &countingRepo{rows: sampleBalances()}
	svc, _ := newCachedService(t, repo)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	fs, err := svc.FinancialStatements(context.Background(), start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	require.True(t, fs.ProfitAndLoss.NetIncome.Equal(d("600")))
	require.True(t, fs.BalanceSheet.IsBalanced)
	require.Equal(t, 2, repo.calls)
}

func TestCacheVersionInitialisesAndBumps(t *testing.T) {
	_, cache := newCachedService(t, &countingRepo{})
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	key, err := cache.BuildKey(ctx, "ledger", "reports", "tb")
	require.NoError(t, err)
	require.Equal(t, "ledger:reports:tb:v1", key)

	require.NoError(t, cache.Bump(ctx))
	ver, err = cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)
}

func TestBumpFromAnotherProcessInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	apiClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	workerClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = apiClient.Close()
		_ = workerClient.Close()
	})
	repo := &countingRepo{rows: sampleBalances()}
	svc := NewService(repo, NewCache(apiClient, time.Minute), nil)
	ctx := context.Background()
	q := AsOfQuery(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	_, err := svc.Generate(ctx, q)
	require.NoError(t, err)
	require.NoError(t, NewCache(workerClient, time.Minute).Bump(ctx))
	_, err = svc.Generate(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}
