package close

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	internalShared "github.com/scholaris-erp/scholaris/internal/shared"
)

const (
	cashID     int64 = 1
	tuitionID  int64 = 2
	salaryID   int64 = 3
	retainedID int64 = 4
	summaryID  int64 = 5
)

// ledgerState is the committed state of memoryStore; transactions work on a copy.
type ledgerState struct {
	accounts map[int64]accounts.Account
	periods  map[int64]periods.Period
	entries  []journals.Entry
	balances map[int64]decimal.Decimal
	nextID   int64
}

func (s ledgerState) clone() ledgerState {
	out := ledgerState{
		accounts: make(map[int64]accounts.Account, len(s.accounts)),
		periods:  make(map[int64]periods.Period, len(s.periods)),
		entries:  append([]journals.Entry(nil), s.entries...),
		balances: make(map[int64]decimal.Decimal, len(s.balances)),
		nextID:   s.nextID,
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.periods {
		out.periods[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	return out
}

func (s ledgerState) totals(start, end time.Time) []AccountTotal {
	sums := map[int64]*AccountTotal{}
	var order []int64
	for _, e := range s.entries {
		if e.IsClosing || e.EntryDate.Before(start) || e.EntryDate.After(end) {
			continue
		}
		for _, l := range e.Lines {
			acc := s.accounts[l.AccountID]
			if !acc.IsActive || (acc.Type != accounts.AccountTypeRevenue && acc.Type != accounts.AccountTypeExpense) {
				continue
			}
			t, ok := sums[acc.ID]
			if !ok {
				t = &AccountTotal{AccountID: acc.ID, Code: acc.Code, Name: acc.Name, Type: acc.Type, Debit: decimal.Zero, Credit: decimal.Zero}
				sums[acc.ID] = t
				order = append(order, acc.ID)
			}
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}
	out := make([]AccountTotal, 0, len(order))
	for _, id := range order {
		t := *sums[id]
		t.Amount = t.Type.NormalBalance(t.Debit.Sub(t.Credit))
		out = append(out, t)
	}
	return out
}

type memoryStore struct {
	state     ledgerState
	recalcErr error
}

func newMemoryStore() *memoryStore {
	active := func(id int64, code, name string, typ accounts.AccountType) accounts.Account {
		return accounts.Account{ID: id, Code: code, Name: name, Type: typ, IsActive: true}
	}
	return &memoryStore{state: ledgerState{
		accounts: map[int64]accounts.Account{
			cashID:     active(cashID, "1000", "Cash", accounts.AccountTypeAsset),
			tuitionID:  active(tuitionID, "4000", "Tuition Fees", accounts.AccountTypeRevenue),
			salaryID:   active(salaryID, "5000", "Teacher Salaries", accounts.AccountTypeExpense),
			retainedID: active(retainedID, accounts.CodeRetainedEarnings, "Retained Earnings", accounts.AccountTypeEquity),
			summaryID:  active(summaryID, accounts.CodeIncomeSummary, "Income Summary", accounts.AccountTypeEquity),
		},
		periods: map[int64]periods.Period{
			1: {
				ID:        1,
				Name:      "January 2024",
				Type:      periods.TypeMonthly,
				StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				Status:    periods.StatusOpen,
			},
		},
		balances: map[int64]decimal.Decimal{},
	}}
}

// post books a balanced entry directly into committed state.
func (m *memoryStore) post(date time.Time, debitID, creditID int64, amount string) {
	value := decimal.RequireFromString(amount)
	m.state.nextID++
	m.state.entries = append(m.state.entries, journals.Entry{
		ID:        m.state.nextID,
		EntryDate: date,
		Reference: "SEED",
		Lines: []journals.Line{
			{AccountID: debitID, Debit: value, Credit: decimal.Zero},
			{AccountID: creditID, Debit: decimal.Zero, Credit: value},
		},
	})
	m.state.recalc()
}

func (s *ledgerState) recalc() {
	s.balances = map[int64]decimal.Decimal{}
	for _, e := range s.entries {
		for _, l := range e.Lines {
			s.balances[l.AccountID] = s.balances[l.AccountID].Add(l.Debit).Sub(l.Credit)
		}
	}
}

func (m *memoryStore) closingEntries() []journals.Entry {
	var out []journals.Entry
	for _, e := range m.state.entries {
		if e.IsClosing {
			out = append(out, e)
		}
	}
	return out
}

func (m *memoryStore) GetPeriod(ctx context.Context, id int64) (periods.Period, error) {
	p, ok := m.state.periods[id]
	if !ok {
		return periods.Period{}, shared.ErrPeriodNotFound
	}
	return p, nil
}

func (m *memoryStore) PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error) {
	return m.state.totals(start, end), nil
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{store: m, state: m.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

type memoryTx struct {
	store *memoryStore
	state ledgerState
}

func (t *memoryTx) AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	out := make(map[int64]accounts.Account)
	for _, id := range ids {
		if a, ok := t.state.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (t *memoryTx) InsertEntry(ctx context.Context, d journals.Draft) (journals.Entry, error) {
	for _, e := range t.state.entries {
		if e.Reference == d.Reference {
			return journals.Entry{}, shared.ErrDuplicateReference
		}
	}
	t.state.nextID++
	createdBy := d.CreatedBy
	e := journals.Entry{ID: t.state.nextID, JournalID: d.JournalID, EntryDate: d.EntryDate, Description: d.Description, Reference: d.Reference, IsClosing: d.IsClosing, CreatedBy: &createdBy}
	t.state.entries = append(t.state.entries, e)
	return e, nil
}

func (t *memoryTx) InsertLines(ctx context.Context, entryID int64, lines []journals.LineInput) ([]journals.Line, error) {
	out := make([]journals.Line, 0, len(lines))
	for i, in := range lines {
		out = append(out, journals.Line{ID: int64(i + 1), EntryID: entryID, AccountID: in.AccountID, Debit: in.Debit, Credit: in.Credit, Description: in.Description})
	}
	for i := range t.state.entries {
		if t.state.entries[i].ID == entryID {
			t.state.entries[i].Lines = out
		}
	}
	return out, nil
}

func (t *memoryTx) LockPeriod(ctx context.Context, id int64) (periods.Period, error) {
	p, ok := t.state.periods[id]
	if !ok {
		return periods.Period{}, shared.ErrPeriodNotFound
	}
	return p, nil
}

func (t *memoryTx) WellKnownAccounts(ctx context.Context) (map[string]accounts.Account, error) {
	out := make(map[string]accounts.Account)
	for _, a := range t.state.accounts {
		if a.IsWellKnown() {
			out[a.Code] = a
		}
	}
	return out, nil
}

func (t *memoryTx) PeriodTotals(ctx context.Context, start, end time.Time) ([]AccountTotal, error) {
	return t.state.totals(start, end), nil
}

func (t *memoryTx) DeleteEntries(ctx context.Context, ids []int64) (int64, error) {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := t.state.entries[:0:0]
	var deleted int64
	for _, e := range t.state.entries {
		if drop[e.ID] {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	t.state.entries = kept
	return deleted, nil
}

func (t *memoryTx) RecalculateBalances(ctx context.Context) error {
	if t.store.recalcErr != nil {
		return t.store.recalcErr
	}
	t.state.recalc()
	return nil
}

func (t *memoryTx) MarkClosed(ctx context.Context, periodID, entryID, actorID int64, at time.Time) error {
	p := t.state.periods[periodID]
	p.Status = periods.StatusClosed
	p.ClosedAt = &at
	p.ClosedBy = &actorID
	if entryID != 0 {
		p.ClosingJournalEntryID = &entryID
	} else {
		p.ClosingJournalEntryID = nil
	}
	t.state.periods[periodID] = p
	return nil
}

func (t *memoryTx) MarkReopened(ctx context.Context, periodID, actorID int64, at time.Time) error {
	p := t.state.periods[periodID]
	p.Status = periods.StatusOpen
	p.ClosedAt = nil
	p.ClosedBy = nil
	p.ClosingJournalEntryID = nil
	p.ReopenedAt = &at
	p.ReopenedBy = &actorID
	t.state.periods[periodID] = p
	return nil
}

type recordingAudit struct{ actions []string }

func (a *recordingAudit) Record(ctx context.Context, log internalShared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

type recordedOp struct {
	op      string
	outcome string
}

type recorder struct{ ops []recordedOp }

func (r *recorder) LedgerOperation(op string, err error) {
	r.ops = append(r.ops, recordedOp{op: op, outcome: shared.Outcome(err)})
}

var (
	jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan20 = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	fixed = time.Date(2024, 2, 1, 9, 30, 15, 0, time.UTC)
)

func newTestService(store *memoryStore) (*Service, *recordingAudit, *countingCache) {
	audit := &recordingAudit{}
	cache := &countingCache{}
	svc := NewService(store, audit, cache, nil, 9)
	svc.WithNow(func() time.Time { return fixed })
	return svc, audit, cache
}

func money(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestClosePeriodTransfersNetIncome(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	store.post(jan20, salaryID, cashID, "400.00")
	svc, audit, cache := newTestService(store)

	preview, err := svc.GetClosingPreview(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, preview.TotalRevenue.Equal(money("1000")))
	require.True(t, preview.TotalExpenses.Equal(money("400")))
	require.True(t, preview.NetIncome.Equal(money("600")))
	require.False(t, preview.IsClosed)

	result, err := svc.ClosePeriod(context.Background(), 1, 42)
	require.NoError(t, err)
	require.NotNil(t, result.ClosingJournalEntryID)
	require.Equal(t, 1, result.RevenueAccountsClosed)
	require.Equal(t, 1, result.ExpenseAccountsClosed)
	require.True(t, result.NetIncome.Equal(money("600")))
	require.Equal(t, int64(42), result.ClosedBy)

	balances := store.state.balances
	require.True(t, balances[tuitionID].IsZero(), "revenue closed to zero")
	require.True(t, balances[salaryID].IsZero(), "expense closed to zero")
	require.True(t, balances[summaryID].IsZero(), "income summary cleared")
	require.True(t, accounts.AccountTypeEquity.NormalBalance(balances[retainedID]).Equal(money("600")))

	closing := store.closingEntries()
	require.Len(t, closing, 1)
	entry := closing[0]
	require.Equal(t, int64(9), entry.JournalID)
	require.Equal(t, "Closing Entry - January 2024", entry.Description)
	require.True(t, entry.EntryDate.Equal(store.state.periods[1].EndDate))
	debit, credit := entry.Totals()
	require.True(t, debit.Equal(credit))

	period := store.state.periods[1]
	require.Equal(t, periods.StatusClosed, period.Status)
	require.Equal(t, entry.ID, *period.ClosingJournalEntryID)

	preview, err = svc.GetClosingPreview(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, preview.IsClosed)
	require.True(t, preview.NetIncome.Equal(money("600")), "closing entries are excluded from the preview")

	require.Equal(t, []string{"period.close"}, audit.actions)
	require.Equal(t, 1, cache.bumps)
}

func TestClosePeriodTwiceIsRejected(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	svc, _, cache := newTestService(store)
	ops := &recorder{}
	svc.WithRecorder(ops)

	_, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = svc.ClosePeriod(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrPeriodAlreadyClosed)
	require.Equal(t, "Period is already closed", shared.MessageOf(err))
	require.Len(t, store.closingEntries(), 1)
	require.Equal(t, 1, cache.bumps)
	require.Equal(t, []recordedOp{
		{op: "period.close", outcome: "success"},
		{op: "period.close", outcome: string(shared.KindValidation)},
	}, ops.ops)
}

func TestClosePeriodRecordsLoss(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "300.00")
	store.post(jan20, salaryID, cashID, "500.00")
	svc, _, _ := newTestService(store)

	result, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err)
	require.True(t, result.NetIncome.Equal(money("-200")))

	balances := store.state.balances
	require.True(t, balances[summaryID].IsZero())
	require.True(t, balances[retainedID].Equal(money("200")), "loss debits retained earnings")
}

func TestClosePeriodWithoutActivity(t *testing.T) {
	store := newMemoryStore()
	svc, _, _ := newTestService(store)

	result, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Nil(t, result.ClosingJournalEntryID)
	require.Empty(t, store.closingEntries())
	require.Equal(t, periods.StatusClosed, store.state.periods[1].Status)
}

func TestClosePeriodRequiresWellKnownAccounts(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	delete(store.state.accounts, retainedID)
	svc, _, cache := newTestService(store)

	_, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.True(t, shared.IsConfiguration(err))
	require.Equal(t, periods.StatusOpen, store.state.periods[1].Status)
	require.Zero(t, cache.bumps)
}

func TestClosePeriodRollsBackWhenRecalculationFails(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	store.recalcErr = context.DeadlineExceeded
	svc, _, _ := newTestService(store)

	_, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.True(t, shared.IsTimeout(err))
	require.Empty(t, store.closingEntries())
	require.Equal(t, periods.StatusOpen, store.state.periods[1].Status)
}

func TestReopenPeriodRestoresBalances(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	store.post(jan20, salaryID, cashID, "400.00")
	svc, audit, cache := newTestService(store)
	before := store.state.clone().balances

	_, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err)

	result, err := svc.ReopenPeriod(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.DeletedEntries)
	require.Equal(t, int64(7), result.ReopenedBy)

	period := store.state.periods[1]
	require.Equal(t, periods.StatusOpen, period.Status)
	require.Nil(t, period.ClosingJournalEntryID)
	require.Nil(t, period.ClosedAt)
	require.Empty(t, store.closingEntries())
	for id, want := range before {
		require.True(t, store.state.balances[id].Equal(want), "account %d", id)
	}
	require.True(t, store.state.balances[retainedID].IsZero())

	require.Equal(t, []string{"period.close", "period.reopen"}, audit.actions)
	require.Equal(t, 2, cache.bumps)

	_, err = svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err, "a reopened period can be closed again")
	require.Len(t, store.closingEntries(), 1)
}

func TestReopenPeriodRequiresClosedPeriod(t *testing.T) {
	svc, _, _ := newTestService(newMemoryStore())
	_, err := svc.ReopenPeriod(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrPeriodNotClosed)
}

func TestUnknownPeriod(t *testing.T) {
	svc, _, _ := newTestService(newMemoryStore())

	_, err := svc.ClosePeriod(context.Background(), 99, 1)
	require.True(t, shared.IsNotFound(err))
	_, err = svc.ReopenPeriod(context.Background(), 99, 1)
	require.True(t, shared.IsNotFound(err))
	_, err = svc.GetClosingPreview(context.Background(), 99)
	require.True(t, shared.IsNotFound(err))
}

func TestClosingReferenceFormat(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	svc, _, _ := newTestService(store)

	result, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^CLOSE-1-20240201093015-[0-9a-f]{8}$`), result.Reference)
}

func TestClosingLinesFlipNegativeBalances(t *testing.T) {
	wk := accounts.WellKnown{
		RetainedEarnings: accounts.Account{ID: retainedID},
		IncomeSummary:    accounts.Account{ID: summaryID},
	}
	preview := Preview{
		TotalRevenue:    money("-50"),
		TotalExpenses:   decimal.Zero,
		NetIncome:       money("-50"),
		RevenueAccounts: []AccountTotal{{AccountID: tuitionID, Name: "Refunds", Amount: money("-50")}},
	}
	lines := ClosingLines(preview, wk)
	require.Len(t, lines, 4)
	require.True(t, lines[0].Credit.Equal(money("50")), "negative revenue is credited")
	require.True(t, lines[1].Debit.Equal(money("50")))

	var debit, credit decimal.Decimal
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	require.True(t, debit.Equal(credit))
}

func TestClassifiedErrorsKeepKinds(t *testing.T) {
	store := newMemoryStore()
	store.post(jan10, cashID, tuitionID, "1000.00")
	store.recalcErr = errors.New("connection reset")
	svc, _, _ := newTestService(store)

	_, err := svc.ClosePeriod(context.Background(), 1, 1)
	require.Equal(t, shared.KindTransaction, shared.KindOf(err))
}
