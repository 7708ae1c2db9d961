package journals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

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

type Service struct {
	repo   Repository
	audit  AuditPort
	cache  Invalidator
	ops    shared.OperationRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, audit AuditPort, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithRecorder attaches an operation counter.
func (s *Service) WithRecorder(ops shared.OperationRecorder) {
	s.ops = ops
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (Page, error) {
	if err := checkRange(filter); err != nil {
		return Page{}, err
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Page{Entries: entries, Pagination: internalShared.NewPagination(filter.Page, filter.PerPage, total)}, nil
}

// GetEntriesForAccount returns entries touching accountID within the optional date range.
func (s *Service) GetEntriesForAccount(ctx context.Context, accountID int64, start, end *time.Time) ([]Entry, error) {
	if accountID <= 0 {
		return nil, shared.Validation("account_id is required")
	}
	filter := ListFilter{AccountID: accountID, Start: start, End: end}
	if err := checkRange(filter); err != nil {
		return nil, err
	}
	return s.repo.EntriesForAccount(ctx, filter)
}

// CreateEntry posts a balanced entry. The write, the closed-period check and the
// balance recalculation share one transaction.
func (s *Service) CreateEntry(ctx context.Context, d Draft) (entry Entry, err error) {
	defer func() { s.observe("journal.create", err) }()
	if d.CreatedBy == 0 {
		d.CreatedBy = internalShared.ActorID(ctx)
	}
	if err := d.Validate(); err != nil {
		return Entry{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		covering, err := tx.PeriodsCovering(ctx, d.EntryDate)
		if err != nil {
			return err
		}
		for _, p := range covering {
			if p.IsClosed() {
				return shared.ErrPeriodClosedForPosting
			}
		}
		posted, err := Post(ctx, tx, d)
		if err != nil {
			return err
		}
		if err := tx.RecalculateBalances(ctx); err != nil {
			return err
		}
		entry = posted
		return nil
	})
	if err != nil {
		return Entry{}, shared.Classify(err)
	}
	s.record(ctx, entry)
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return entry, nil
}

// Post validates d and writes it through tx. Every referenced account must
// exist and be active. Callers own the transaction and any period checks.
func Post(ctx context.Context, tx Poster, d Draft) (Entry, error) {
	if err := d.Validate(); err != nil {
		return Entry{}, err
	}
	found, err := tx.AccountsByID(ctx, d.accountIDs())
	if err != nil {
		return Entry{}, err
	}
	for idx, line := range d.Lines {
		account, ok := found[line.AccountID]
		if !ok {
			return Entry{}, lineError(shared.ErrAccountNotFound, "line %d: account %d does not exist", idx+1, line.AccountID)
		}
		if !account.IsActive {
			return Entry{}, lineError(shared.ErrAccountInactive, "line %d: account %s is inactive", idx+1, account.Code)
		}
	}
	entry, err := tx.InsertEntry(ctx, d)
	if err != nil {
		return Entry{}, err
	}
	lines, err := tx.InsertLines(ctx, entry.ID, d.Lines)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *Service) record(ctx context.Context, entry Entry) {
	if s.audit == nil {
		return
	}
	debit, _ := entry.Totals()
	err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  internalShared.ActorID(ctx),
		Action:   "journal.create",
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta: map[string]any{
			"reference":     entry.Reference,
			"entry_date":    entry.EntryDate.Format(dateLayout),
			"amount":        shared.Format(debit),
			"source_module": entry.SourceModule,
		},
		At: s.now(),
	})
	if err != nil {
		s.logger.Warn("audit journal", slog.Any("error", err))
	}
}

func (s *Service) observe(op string, err error) {
	if s.ops != nil {
		s.ops.LedgerOperation(op, err)
	}
}

// lineError reports a rejected line as a validation error that still matches
// the underlying account sentinel.
func lineError(cause error, format string, args ...any) error {
	return &shared.Error{Kind: shared.KindValidation, Message: fmt.Sprintf(format, args...), Err: cause}
}

func checkRange(filter ListFilter) error {
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return shared.Validation("end_date must not be before start_date")
	}
	return nil
}
