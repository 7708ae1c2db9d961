package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/accounting/balances"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/reports"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/integration"
	jobmetrics "github.com/scholaris-erp/scholaris/internal/jobs"
)

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

type stubReconciler struct {
	drift []balances.Drift
	err   error
	calls int
}

func (s *stubReconciler) Reconcile(ctx context.Context) ([]balances.Drift, error) {
	s.calls++
	return s.drift, s.err
}

func TestBalancesReconcileJob(t *testing.T) {
	svc := &stubReconciler{drift: []balances.Drift{{AccountID: 1, Code: "1000"}}}
	job := NewBalancesReconcileJob(svc, nil, testMetrics())
	task, err := NewBalancesReconcileTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, svc.calls)

	svc.err = shared.Timeout(context.DeadlineExceeded)
	require.Error(t, job.Handle(context.Background(), task))
}

type stubBuilder struct {
	tb    reports.TrialBalance
	query reports.Query
}

func (s *stubBuilder) Generate(ctx context.Context, q reports.Query) (reports.TrialBalance, error) {
	s.query = q
	return s.tb, nil
}

func TestGLIntegrityJobUsesToday(t *testing.T) {
	builder := &stubBuilder{tb: reports.TrialBalance{IsBalanced: false, Totals: reports.Totals{Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(9), Difference: decimal.NewFromInt(1)}}}
	job := NewGLIntegrityJob(builder, nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2024, 6, 30, 17, 45, 0, 0, time.UTC) }
	task, err := NewGLIntegrityTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task), "an imbalance is reported, not retried")
	require.NotNil(t, builder.query.AsOf)
	require.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *builder.query.AsOf)
}

type stubGenerator struct {
	year int
	typ  string
	err  error
}

func (s *stubGenerator) GenerateYear(ctx context.Context, year int, rawType string) ([]periods.Period, error) {
	s.year, s.typ = year, rawType
	return make([]periods.Period, 12), s.err
}

func TestPeriodRolloverDefaults(t *testing.T) {
	gen := &stubGenerator{}
	job := NewPeriodRolloverJob(gen, "quarterly", nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC) }
	task, err := NewPeriodRolloverTask(PeriodRolloverPayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 2025, gen.year)
	require.Equal(t, "quarterly", gen.typ)

	gen.err = shared.Validation("invalid period_type")
	err = job.Handle(context.Background(), task)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}

type stubHooks struct {
	fees []integration.FeePaymentPosted
	err  error
}

func (s *stubHooks) HandleFeePayment(ctx context.Context, evt integration.FeePaymentPosted) error {
	s.fees = append(s.fees, evt)
	return s.err
}

func (s *stubHooks) HandlePayrollDisbursement(ctx context.Context, evt integration.PayrollDisbursed) error {
	return s.err
}

func (s *stubHooks) HandleCashBankTransaction(ctx context.Context, evt integration.CashBankTransaction) error {
	return s.err
}

func TestIntegrationPostingDecodesAndClassifies(t *testing.T) {
	hooks := &stubHooks{}
	job := NewIntegrationPostingJob(hooks, nil, testMetrics())
	task, err := NewFeePaymentTask(integration.FeePaymentPosted{ReceiptNo: "R-1", Method: "cash", Amount: decimal.NewFromInt(100), PaidAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	require.NoError(t, job.HandleFeePayment(context.Background(), task))
	require.Len(t, hooks.fees, 1)
	require.Equal(t, "R-1", hooks.fees[0].ReceiptNo)
	require.True(t, hooks.fees[0].Amount.Equal(decimal.NewFromInt(100)))

	hooks.err = shared.ErrMappingNotFound
	err = job.HandleFeePayment(context.Background(), task)
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry), "configuration errors are retried")

	hooks.err = integration.ErrInvalidEvent
	require.True(t, errors.Is(job.HandleFeePayment(context.Background(), task), asynq.SkipRetry))

	bad := asynq.NewTask(TaskFeePayment, []byte("{"))
	require.True(t, errors.Is(job.HandleFeePayment(context.Background(), bad), asynq.SkipRetry))
}

func TestNewTaskByType(t *testing.T) {
	for _, typ := range []string{TaskBalancesReconcile, TaskGLIntegrity, TaskPeriodRollover} {
		task, err := NewTask(typ, time.Now())
		require.NoError(t, err)
		require.Equal(t, typ, task.Type())
	}
	_, err := NewTask("mail:send", time.Now())
	var unknown *UnknownTaskError
	require.ErrorAs(t, err, &unknown)
}

func TestLedgerCron(t *testing.T) {
	entries, err := LedgerCron(time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, TaskPeriodRollover, entries[2].Task.Type())
}

func TestHealthWithoutInspector(t *testing.T) {
	h := NewHandler(nil, nil)
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Queues []queueHealth `json:"queues"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Queues, 2)
	require.Equal(t, QueueLedger, body.Queues[0].Queue)
}

func TestClientEnqueuesIntegrationEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	opt := asynq.RedisClientOpt{Addr: mr.Addr()}
	client, err := NewClient(opt)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	info, err := client.EnqueueFeePayment(ctx, integration.FeePaymentPosted{ReceiptNo: "R-1", Method: "cash", Amount: decimal.NewFromInt(100), PaidAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, QueueLedger, info.Queue)
	require.Equal(t, 10, info.MaxRetry)

	info, err = client.EnqueueCashBank(ctx, integration.CashBankTransaction{TxnID: "CB-1", Direction: integration.DirectionReceipt, Method: "bank", CounterKey: "donation", Amount: decimal.NewFromInt(5), Date: time.Now()})
	require.NoError(t, err)
	require.Equal(t, TaskCashBankTransaction, info.Type)

	_, err = client.EnqueuePayrollDisbursement(ctx, integration.PayrollDisbursed{RunID: "2024-01", Method: "bank", Amount: decimal.NewFromInt(50), PaidAt: time.Now()})
	require.NoError(t, err)
	require.True(t, mr.Exists("asynq:{ledger}:pending"))
}
