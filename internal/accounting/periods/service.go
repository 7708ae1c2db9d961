package periods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	internalShared "github.com/scholaris-erp/scholaris/internal/shared"
)

const dateLayout = "2006-01-02"

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, status Status) ([]Period, error) {
	return s.repo.List(ctx, status)
}

func (s *Service) Get(ctx context.Context, id int64) (Period, error) {
	return s.repo.Get(ctx, id)
}

// Create defines a period manually. Ranges may not overlap existing periods.
func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	draft, err := parseDraft(in)
	if err != nil {
		return Period{}, err
	}
	overlap, err := s.repo.Overlaps(ctx, draft.StartDate, draft.EndDate)
	if err != nil {
		return Period{}, err
	}
	if overlap {
		return Period{}, shared.ErrPeriodOverlap
	}
	period, err := s.repo.Insert(ctx, draft)
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, "period.create", period)
	return period, nil
}

// GenerateYear creates every period of year for the given type, skipping
// windows that overlap a period defined earlier.
func (s *Service) GenerateYear(ctx context.Context, year int, rawType string) ([]Period, error) {
	typ, ok := ParseType(rawType)
	if !ok {
		return nil, shared.Validationf("invalid period_type %q", rawType)
	}
	if year < 1900 || year > 9999 {
		return nil, shared.Validationf("invalid year %d", year)
	}
	created := make([]Period, 0)
	for _, draft := range BuildYear(year, typ) {
		overlap, err := s.repo.Overlaps(ctx, draft.StartDate, draft.EndDate)
		if err != nil {
			return nil, err
		}
		if overlap {
			continue
		}
		period, err := s.repo.Insert(ctx, draft)
		if err != nil {
			if errors.Is(err, shared.ErrPeriodOverlap) {
				continue
			}
			return nil, err
		}
		s.record(ctx, "period.generate", period)
		created = append(created, period)
	}
	s.logger.Info("periods generated", slog.Int("year", year), slog.String("type", string(typ)), slog.Int("created", len(created)))
	return created, nil
}

// BuildYear lays out the periods of a calendar year.
func BuildYear(year int, typ Type) []Draft {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	switch typ {
	case TypeMonthly:
		out := make([]Draft, 0, 12)
		for m := 0; m < 12; m++ {
			from := start.AddDate(0, m, 0)
			out = append(out, Draft{
				Name:      from.Format("January 2006"),
				Type:      typ,
				StartDate: from,
				EndDate:   from.AddDate(0, 1, -1),
			})
		}
		return out
	case TypeQuarterly:
		out := make([]Draft, 0, 4)
		for q := 0; q < 4; q++ {
			from := start.AddDate(0, q*3, 0)
			out = append(out, Draft{
				Name:      fmt.Sprintf("Q%d %d", q+1, year),
				Type:      typ,
				StartDate: from,
				EndDate:   from.AddDate(0, 3, -1),
			})
		}
		return out
	case TypeYearly:
		return []Draft{{
			Name:      fmt.Sprintf("FY %d", year),
			Type:      typ,
			StartDate: start,
			EndDate:   start.AddDate(1, 0, -1),
		}}
	}
	return nil
}

func parseDraft(in CreateInput) (Draft, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Draft{}, shared.Validation("period_name is required")
	}
	typ, ok := ParseType(in.Type)
	if !ok {
		return Draft{}, shared.Validationf("invalid period_type %q", in.Type)
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(in.StartDate))
	if err != nil {
		return Draft{}, shared.Validation("start_date must be a date in YYYY-MM-DD format")
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(in.EndDate))
	if err != nil {
		return Draft{}, shared.Validation("end_date must be a date in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return Draft{}, shared.Validation("end_date must not be before start_date")
	}
	return Draft{Name: name, Type: typ, StartDate: start, EndDate: end}, nil
}

func (s *Service) record(ctx context.Context, action string, period Period) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  internalShared.ActorID(ctx),
		Action:   action,
		Entity:   "accounting_period",
		EntityID: fmt.Sprintf("%d", period.ID),
		Meta: map[string]any{
			"name":  period.Name,
			"start": period.StartDate.Format(dateLayout),
			"end":   period.EndDate.Format(dateLayout),
		},
		At: s.now(),
	})
	if err != nil {
		s.logger.Warn("audit period", slog.String("action", action), slog.Any("error", err))
	}
}
