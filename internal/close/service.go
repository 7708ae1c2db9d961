package close

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	internalShared "github.com/scholaris-erp/scholaris/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Invalidator drops cached reports after ledger-visible changes.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service orchestrates period closing and reopening.
type Service struct {
	repo      Repository
	audit     AuditPort
	cache     Invalidator
	ops       shared.OperationRecorder
	logger    *slog.Logger
	journalID int64
	now       func() time.Time
	newID     func() string
}

// NewService constructs a Service. journalID is the book closing entries are posted to.
func NewService(repo Repository, audit AuditPort, cache Invalidator, logger *slog.Logger, journalID int64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		audit:     audit,
		cache:     cache,
		logger:    logger,
		journalID: journalID,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithRecorder attaches an operation counter.
func (s *Service) WithRecorder(ops shared.OperationRecorder) {
	s.ops = ops
}

// GetClosingPreview aggregates the period's revenue and expenses without writing.
func (s *Service) GetClosingPreview(ctx context.Context, periodID int64) (Preview, error) {
	period, err := s.repo.GetPeriod(ctx, periodID)
	if err != nil {
		return Preview{}, err
	}
	totals, err := s.repo.PeriodTotals(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return Preview{}, shared.Classify(err)
	}
	return buildPreview(period, totals), nil
}

// ClosePeriod zeroes the period's revenue and expense accounts into income
// summary, transfers net income to retained earnings and marks the period
// closed. Every step runs in one transaction holding the period row lock.
func (s *Service) ClosePeriod(ctx context.Context, periodID, actorID int64) (result Result, err error) {
	defer func() { s.observe("period.close", err) }()
	if actorID == 0 {
		actorID = internalShared.ActorID(ctx)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if period.IsClosed() {
			return shared.ErrPeriodAlreadyClosed
		}
		if !period.Status.Closable() {
			return shared.Validationf("period in status %q cannot be closed", period.Status)
		}
		found, err := tx.WellKnownAccounts(ctx)
		if err != nil {
			return err
		}
		wk, err := accounts.ResolveWellKnown(found)
		if err != nil {
			return err
		}
		totals, err := tx.PeriodTotals(ctx, period.StartDate, period.EndDate)
		if err != nil {
			return err
		}
		preview := buildPreview(period, totals)
		now := s.now()
		result = Result{
			PeriodID:              period.ID,
			TotalRevenue:          preview.TotalRevenue,
			TotalExpenses:         preview.TotalExpenses,
			NetIncome:             preview.NetIncome,
			RevenueAccountsClosed: len(preview.RevenueAccounts),
			ExpenseAccountsClosed: len(preview.ExpenseAccounts),
			ClosedAt:              now,
			ClosedBy:              actorID,
		}
		var entryID int64
		if lines := ClosingLines(preview, wk); len(lines) > 0 {
			draft := journals.Draft{
				JournalID:   s.journalID,
				EntryDate:   period.EndDate,
				Description: "Closing Entry - " + period.Name,
				Reference:   s.reference(period.ID, now),
				IsClosing:   true,
				CreatedBy:   actorID,
				Lines:       lines,
			}
			entry, err := journals.Post(ctx, tx, draft)
			if err != nil {
				return err
			}
			entryID = entry.ID
			result.ClosingJournalEntryID = &entry.ID
			result.Reference = entry.Reference
		}
		if err := tx.RecalculateBalances(ctx); err != nil {
			return err
		}
		return tx.MarkClosed(ctx, period.ID, entryID, actorID, now)
	})
	if err != nil {
		return Result{}, shared.Classify(err)
	}
	s.logger.Info("period closed",
		slog.Int64("period_id", periodID),
		slog.String("net_income", shared.Format(result.NetIncome)),
		slog.Int64("actor_id", actorID))
	s.record(ctx, "period.close", periodID, actorID, map[string]any{
		"reference":      result.Reference,
		"total_revenue":  shared.Format(result.TotalRevenue),
		"total_expenses": shared.Format(result.TotalExpenses),
		"net_income":     shared.Format(result.NetIncome),
	})
	s.bump(ctx)
	return result, nil
}

// ReopenPeriod deletes the period's closing entry, recalculates balances and
// returns the period to open.
func (s *Service) ReopenPeriod(ctx context.Context, periodID, actorID int64) (result ReopenResult, err error) {
	defer func() { s.observe("period.reopen", err) }()
	if actorID == 0 {
		actorID = internalShared.ActorID(ctx)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if !period.IsClosed() {
			return shared.ErrPeriodNotClosed
		}
		var ids []int64
		if period.ClosingJournalEntryID != nil {
			ids = append(ids, *period.ClosingJournalEntryID)
		}
		deleted, err := tx.DeleteEntries(ctx, ids)
		if err != nil {
			return err
		}
		if err := tx.RecalculateBalances(ctx); err != nil {
			return err
		}
		now := s.now()
		if err := tx.MarkReopened(ctx, period.ID, actorID, now); err != nil {
			return err
		}
		result = ReopenResult{PeriodID: period.ID, DeletedEntries: deleted, ReopenedAt: now, ReopenedBy: actorID}
		return nil
	})
	if err != nil {
		return ReopenResult{}, shared.Classify(err)
	}
	s.logger.Info("period reopened", slog.Int64("period_id", periodID), slog.Int64("deleted_entries", result.DeletedEntries))
	s.record(ctx, "period.reopen", periodID, actorID, map[string]any{"deleted_entries": result.DeletedEntries})
	s.bump(ctx)
	return result, nil
}

// ClosingLines builds the closing entry lines: each revenue account is debited
// and each expense account credited for its balance against income summary,
// then income summary is cleared to retained earnings.
func ClosingLines(p Preview, wk accounts.WellKnown) []journals.LineInput {
	var lines []journals.LineInput
	for _, acc := range p.RevenueAccounts {
		lines = append(lines, line(acc.AccountID, acc.Amount, true, fmt.Sprintf("Close %s to Income Summary", acc.Name)))
	}
	if !p.TotalRevenue.IsZero() {
		lines = append(lines, line(wk.IncomeSummary.ID, p.TotalRevenue, false, "Total revenue to Income Summary"))
	}
	if !p.TotalExpenses.IsZero() {
		lines = append(lines, line(wk.IncomeSummary.ID, p.TotalExpenses, true, "Total expenses to Income Summary"))
	}
	for _, acc := range p.ExpenseAccounts {
		lines = append(lines, line(acc.AccountID, acc.Amount, false, fmt.Sprintf("Close %s to Income Summary", acc.Name)))
	}
	if !p.NetIncome.IsZero() {
		lines = append(lines,
			line(wk.IncomeSummary.ID, p.NetIncome, true, "Close Income Summary to Retained Earnings"),
			line(wk.RetainedEarnings.ID, p.NetIncome, false, "Net income to Retained Earnings"),
		)
	}
	return lines
}

// line places amount on the debit side when debit is set, flipping sides for
// negative amounts.
func line(accountID int64, amount decimal.Decimal, debit bool, description string) journals.LineInput {
	if amount.IsNegative() {
		debit = !debit
		amount = amount.Abs()
	}
	out := journals.LineInput{AccountID: accountID, Debit: decimal.Zero, Credit: decimal.Zero, Description: description}
	if debit {
		out.Debit = amount
	} else {
		out.Credit = amount
	}
	return out
}

func buildPreview(period periods.Period, totals []AccountTotal) Preview {
	p := Preview{
		PeriodID:        period.ID,
		PeriodName:      period.Name,
		StartDate:       period.StartDate,
		EndDate:         period.EndDate,
		Status:          period.Status,
		TotalRevenue:    decimal.Zero,
		TotalExpenses:   decimal.Zero,
		RevenueAccounts: []AccountTotal{},
		ExpenseAccounts: []AccountTotal{},
		IsClosed:        period.IsClosed(),
	}
	for _, t := range totals {
		if t.Amount.IsZero() {
			continue
		}
		switch t.Type {
		case accounts.AccountTypeRevenue:
			p.RevenueAccounts = append(p.RevenueAccounts, t)
			p.TotalRevenue = p.TotalRevenue.Add(t.Amount)
		case accounts.AccountTypeExpense:
			p.ExpenseAccounts = append(p.ExpenseAccounts, t)
			p.TotalExpenses = p.TotalExpenses.Add(t.Amount)
		}
	}
	p.NetIncome = p.TotalRevenue.Sub(p.TotalExpenses)
	return p
}

// reference is unique per attempt: CLOSE-{period}-{yyyymmddHHMMSS}-{8 hex}.
func (s *Service) reference(periodID int64, at time.Time) string {
	id := s.newID()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("CLOSE-%d-%s-%s", periodID, at.UTC().Format("20060102150405"), id)
}

func (s *Service) record(ctx context.Context, action string, periodID, actorID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "accounting_period",
		EntityID: fmt.Sprintf("%d", periodID),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit period", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}

func (s *Service) observe(op string, err error) {
	if s.ops != nil {
		s.ops.LedgerOperation(op, err)
	}
}
