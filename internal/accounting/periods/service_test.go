package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

type memoryRepo struct {
	periods []Period
}

func (m *memoryRepo) List(ctx context.Context, status Status) ([]Period, error) {
	var out []Period
	for _, p := range m.periods {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Period, error) {
	for _, p := range m.periods {
		if p.ID == id {
			return p, nil
		}
	}
	return Period{}, shared.ErrPeriodNotFound
}

func (m *memoryRepo) Overlaps(ctx context.Context, start, end time.Time) (bool, error) {
	for _, p := range m.periods {
		if !start.After(p.EndDate) && !end.Before(p.StartDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Insert(ctx context.Context, d Draft) (Period, error) {
	p := Period{
		ID:        int64(len(m.periods) + 1),
		Name:      d.Name,
		Type:      d.Type,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    StatusOpen,
	}
	m.periods = append(m.periods, p)
	return p, nil
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)
	cases := []CreateInput{
		{Name: "", Type: "monthly", StartDate: "2024-01-01", EndDate: "2024-01-31"},
		{Name: "Jan", Type: "weekly", StartDate: "2024-01-01", EndDate: "2024-01-31"},
		{Name: "Jan", Type: "monthly", StartDate: "01/01/2024", EndDate: "2024-01-31"},
		{Name: "Jan", Type: "monthly", StartDate: "2024-01-31", EndDate: "2024-01-01"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		require.True(t, shared.IsValidation(err), "input %+v", in)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{Name: "January 2024", Type: "monthly", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Mid", Type: "monthly", StartDate: "2024-01-31", EndDate: "2024-02-27"})
	require.ErrorIs(t, err, shared.ErrPeriodOverlap)

	p, err := svc.Create(context.Background(), CreateInput{Name: "February 2024", Type: "monthly", StartDate: "2024-02-01", EndDate: "2024-02-29"})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, p.Status)
}

func TestBuildYearLayouts(t *testing.T) {
	months := BuildYear(2024, TypeMonthly)
	require.Len(t, months, 12)
	require.Equal(t, "February 2024", months[1].Name)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), months[1].EndDate)

	quarters := BuildYear(2024, TypeQuarterly)
	require.Len(t, quarters, 4)
	require.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), quarters[1].EndDate)

	years := BuildYear(2024, TypeYearly)
	require.Len(t, years, 1)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), years[0].EndDate)
}

func TestGenerateYearSkipsExistingPeriods(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{Name: "March 2025", Type: "monthly", StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)

	created, err := svc.GenerateYear(context.Background(), 2025, "monthly")
	require.NoError(t, err)
	require.Len(t, created, 11)
	require.Len(t, repo.periods, 12)

	again, err := svc.GenerateYear(context.Background(), 2025, "monthly")
	require.NoError(t, err)
	require.Empty(t, again)

	_, err = svc.GenerateYear(context.Background(), 2025, "weekly")
	require.True(t, shared.IsValidation(err))
}

func TestPeriodCoversIsInclusive(t *testing.T) {
	p := Period{StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	require.True(t, p.Covers(time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC)))
	require.True(t, p.Covers(p.StartDate))
	require.False(t, p.Covers(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, StatusReopened.Closable())
	require.False(t, StatusClosed.Closable())
}
