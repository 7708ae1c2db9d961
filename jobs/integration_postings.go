package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/integration"
	jobmetrics "github.com/scholaris-erp/scholaris/internal/jobs"
)

// PostingHooks posts integration events into the ledger.
type PostingHooks interface {
	HandleFeePayment(ctx context.Context, evt integration.FeePaymentPosted) error
	HandlePayrollDisbursement(ctx context.Context, evt integration.PayrollDisbursed) error
	HandleCashBankTransaction(ctx context.Context, evt integration.CashBankTransaction) error
}

// IntegrationPostingJob delivers fee, payroll and cash/bank events to the ledger.
type IntegrationPostingJob struct {
	Hooks   PostingHooks
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIntegrationPostingJob constructs the posting handlers.
func NewIntegrationPostingJob(hooks PostingHooks, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrationPostingJob {
	return &IntegrationPostingJob{Hooks: hooks, Logger: logger, Metrics: metrics}
}

// Handlers lists the task handlers to register on the worker.
func (j *IntegrationPostingJob) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskFeePayment, Handler: j.HandleFeePayment},
		{Type: TaskPayrollDisbursement, Handler: j.HandlePayrollDisbursement},
		{Type: TaskCashBankTransaction, Handler: j.HandleCashBank},
	}
}

func (j *IntegrationPostingJob) HandleFeePayment(ctx context.Context, t *asynq.Task) error {
	var evt integration.FeePaymentPosted
	return j.run(ctx, t, &evt, func(ctx context.Context) error {
		return j.Hooks.HandleFeePayment(ctx, evt)
	})
}

func (j *IntegrationPostingJob) HandlePayrollDisbursement(ctx context.Context, t *asynq.Task) error {
	var evt integration.PayrollDisbursed
	return j.run(ctx, t, &evt, func(ctx context.Context) error {
		return j.Hooks.HandlePayrollDisbursement(ctx, evt)
	})
}

func (j *IntegrationPostingJob) HandleCashBank(ctx context.Context, t *asynq.Task) error {
	var evt integration.CashBankTransaction
	return j.run(ctx, t, &evt, func(ctx context.Context) error {
		return j.Hooks.HandleCashBankTransaction(ctx, evt)
	})
}

// run decodes the payload into evt and posts it. Malformed events and
// validation failures are not retried; configuration and storage errors are.
func (j *IntegrationPostingJob) run(ctx context.Context, t *asynq.Task, evt any, post func(context.Context) error) error {
	if j == nil || j.Hooks == nil {
		return errors.New("integration posting: hooks not configured")
	}
	logger := jobLogger(j.Logger, t.Type())
	tracker := metricsOr(j.Metrics).Track(t.Type())
	if err := json.Unmarshal(t.Payload(), evt); err != nil {
		logger.Error("decode event", slog.Any("error", err))
		tracker.End(err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := post(ctx); err != nil {
		tracker.End(err)
		if errors.Is(err, integration.ErrInvalidEvent) || shared.IsValidation(err) {
			logger.Error("event rejected", slog.Any("error", err))
			return errors.Join(err, asynq.SkipRetry)
		}
		logger.Warn("post event", slog.Any("error", err))
		return err
	}
	return tracker.End(nil)
}
