package reports

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

// Service builds ledger reports, caching results until the ledger changes.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Generate builds the trial balance for q. Closing entries are part of the
// ledger and therefore included.
func (s *Service) Generate(ctx context.Context, q Query) (TrialBalance, error) {
	if err := q.Validate(); err != nil {
		return TrialBalance{}, err
	}
	var tb TrialBalance
	err := s.cached(ctx, &tb, func(ctx context.Context) (any, error) {
		rows, err := s.repo.Aggregate(ctx, q, false)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(q, rows), nil
	}, "tb", q.Key())
	if err != nil {
		return TrialBalance{}, shared.Classify(err)
	}
	return tb, nil
}

// ProfitAndLoss reports revenue and expense activity within [start, end],
// ignoring closing entries so closed periods keep their figures.
func (s *Service) ProfitAndLoss(ctx context.Context, start, end time.Time) (ProfitAndLoss, error) {
	q := RangeQuery(start, end)
	if err := q.Validate(); err != nil {
		return ProfitAndLoss{}, err
	}
	var pl ProfitAndLoss
	err := s.cached(ctx, &pl, func(ctx context.Context) (any, error) {
		rows, err := s.repo.Aggregate(ctx, q, true)
		if err != nil {
			return nil, err
		}
		return BuildProfitAndLoss(start, end, rows), nil
	}, "pl", q.Key())
	if err != nil {
		return ProfitAndLoss{}, shared.Classify(err)
	}
	return pl, nil
}

// BalanceSheet reports balances as of asOf.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	q := AsOfQuery(asOf)
	var bs BalanceSheet
	err := s.cached(ctx, &bs, func(ctx context.Context) (any, error) {
		rows, err := s.repo.Aggregate(ctx, q, false)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(asOf, rows), nil
	}, "bs", q.Key())
	if err != nil {
		return BalanceSheet{}, shared.Classify(err)
	}
	return bs, nil
}

// FinancialStatements builds the profit and loss and the closing balance sheet concurrently.
func (s *Service) FinancialStatements(ctx context.Context, start, end time.Time) (FinancialStatements, error) {
	if err := RangeQuery(start, end).Validate(); err != nil {
		return FinancialStatements{}, err
	}
	var out FinancialStatements
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pl, err := s.ProfitAndLoss(gctx, start, end)
		out.ProfitAndLoss = pl
		return err
	})
	g.Go(func() error {
		bs, err := s.BalanceSheet(gctx, end)
		out.BalanceSheet = bs
		return err
	})
	if err := g.Wait(); err != nil {
		return FinancialStatements{}, err
	}
	return out, nil
}

// Bump invalidates every cached report.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) cached(ctx context.Context, dest any, build func(context.Context) (any, error), parts ...string) error {
	flight := strings.Join(parts, ":")
	load := func(ctx context.Context) (any, error) {
		res := s.group.DoChan(flight, func() (any, error) {
			return build(ctx)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-res:
			return r.Val, r.Err
		}
	}
	cache := s.cache
	key, err := cache.BuildKey(ctx, append([]string{"ledger", "reports"}, parts...)...)
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.Any("error", err))
		cache = nil
	}
	return cache.FetchJSON(ctx, key, dest, load)
}
