package balances

import (
	"context"
	"log/slog"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

// Invalidator drops cached reports after ledger-visible changes.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo    Repository
	cache   Invalidator
	logger  *slog.Logger
	timeout time.Duration
	ops     shared.OperationRecorder
}

func NewService(repo Repository, cache Invalidator, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, timeout: timeout}
}

// WithRecorder attaches an operation counter.
func (s *Service) WithRecorder(ops shared.OperationRecorder) {
	s.ops = ops
}

// RecalculateAll recomputes every account balance from journal lines.
func (s *Service) RecalculateAll(ctx context.Context) (err error) {
	defer func() {
		if s.ops != nil {
			s.ops.LedgerOperation("balances.recalculate", err)
		}
	}()
	start := time.Now()
	if err := s.repo.Recalculate(ctx, s.timeout); err != nil {
		return shared.Classify(err)
	}
	s.logger.Info("balances recalculated", slog.Duration("elapsed", time.Since(start)))
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Balance, error) {
	return s.repo.List(ctx)
}

// Drift lists accounts whose stored balance no longer matches the journal.
func (s *Service) Drift(ctx context.Context) ([]Drift, error) {
	return s.repo.Drift(ctx)
}

// Reconcile checks for drift and recalculates when any is found. It returns the
// drift observed before the recalculation.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	drift, err := s.repo.Drift(ctx)
	if err != nil {
		return nil, err
	}
	if len(drift) == 0 {
		return nil, nil
	}
	for _, d := range drift {
		s.logger.Warn("balance drift", slog.String("code", d.Code), slog.String("stored", shared.Format(d.Stored)), slog.String("actual", shared.Format(d.Actual)))
	}
	if err := s.RecalculateAll(ctx); err != nil {
		return drift, err
	}
	return drift, nil
}
