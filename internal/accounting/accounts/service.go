package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new account after validating type, code and parent.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return Account{}, shared.Validation("code and name are required")
	}
	typ, ok := ParseAccountType(in.Type)
	if !ok {
		return Account{}, shared.Validationf("invalid account type %q", in.Type)
	}
	if IsWellKnownCode(code) && typ != AccountTypeEquity {
		return Account{}, shared.ErrWellKnownType
	}
	if in.ParentID != nil {
		if _, err := s.repo.Get(ctx, *in.ParentID); err != nil {
			return Account{}, err
		}
	}
	account, err := s.repo.Insert(ctx, code, name, typ, in.ParentID)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.create", account, map[string]any{"code": account.Code, "type": account.Type})
	return account, nil
}

// Update edits an account. The code is immutable once journal lines reference it.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Account, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return Account{}, shared.Validation("code and name are required")
	}
	if code != current.Code {
		if current.IsWellKnown() {
			return Account{}, shared.ErrWellKnownProtected
		}
		if IsWellKnownCode(code) {
			return Account{}, shared.ErrWellKnownCode
		}
		used, err := s.repo.HasEntries(ctx, id)
		if err != nil {
			return Account{}, err
		}
		if used {
			return Account{}, shared.Validation("account code cannot change once journal entries reference it")
		}
	}
	if in.ParentID != nil {
		if *in.ParentID == id {
			return Account{}, shared.Validation("account cannot be its own parent")
		}
		if _, err := s.repo.Get(ctx, *in.ParentID); err != nil {
			return Account{}, err
		}
	}
	account, err := s.repo.Update(ctx, id, code, name, in.ParentID)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.update", account, map[string]any{"previous_code": current.Code, "code": account.Code})
	s.bump(ctx)
	return account, nil
}

// Deactivate soft-deactivates an account; history stays intact.
func (s *Service) Deactivate(ctx context.Context, id int64) (Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if account.IsWellKnown() {
		return Account{}, shared.ErrWellKnownProtected
	}
	if !account.IsActive {
		return account, nil
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return Account{}, err
	}
	account.IsActive = false
	s.record(ctx, "account.deactivate", account, nil)
	return account, nil
}

// Delete hard-deletes an account that was never used.
func (s *Service) Delete(ctx context.Context, id int64) error {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if account.IsWellKnown() {
		return shared.ErrWellKnownProtected
	}
	used, err := s.repo.HasEntries(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.ErrAccountInUse
	}
	children, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if children {
		return shared.Validation("account has child accounts")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "account.delete", account, map[string]any{"code": account.Code})
	return nil
}

// ResolveWellKnown picks retained earnings (3998) and income summary (3999) out
// of a lookup result, failing with a configuration error unless both are active
// equity accounts.
func ResolveWellKnown(found map[string]Account) (WellKnown, error) {
	re, okRE := found[CodeRetainedEarnings]
	is, okIS := found[CodeIncomeSummary]
	if !okRE || !okIS || !re.IsActive || !is.IsActive ||
		re.Type != AccountTypeEquity || is.Type != AccountTypeEquity {
		return WellKnown{}, shared.ErrClosingAccountsMissing
	}
	return WellKnown{RetainedEarnings: re, IncomeSummary: is}, nil
}

func (s *Service) record(ctx context.Context, action string, account Account, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  internalShared.ActorID(ctx),
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", account.ID),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit account", slog.String("action", action), slog.Any("error", err))
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
