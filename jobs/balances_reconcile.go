package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris/internal/accounting/balances"
	jobmetrics "github.com/scholaris-erp/scholaris/internal/jobs"
)

// BalanceReconciler detects and repairs drift in materialized balances.
type BalanceReconciler interface {
	Reconcile(ctx context.Context) ([]balances.Drift, error)
}

// BalancesReconcileJob compares account_balances with the journal and
// recalculates when they disagree.
type BalancesReconcileJob struct {
	Service BalanceReconciler
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBalancesReconcileJob constructs the job handler.
func NewBalancesReconcileJob(service BalanceReconciler, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalancesReconcileJob {
	return &BalancesReconcileJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle executes the reconciliation.
func (j *BalancesReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("balances reconcile: service not configured")
	}
	var payload ScheduledPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := metricsOr(j.Metrics).Track(TaskBalancesReconcile)
	drift, err := j.Service.Reconcile(ctx)
	if err != nil {
		jobLogger(j.Logger, TaskBalancesReconcile).Error("reconcile balances", slog.Any("error", err))
		return tracker.End(err)
	}
	if len(drift) > 0 {
		metricsOr(j.Metrics).AddAnomalies("balance_drift", "MEDIUM", len(drift))
	}
	jobLogger(j.Logger, TaskBalancesReconcile).Info("balances reconciled", slog.Int("drifted_accounts", len(drift)))
	return tracker.End(nil)
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}

func metricsOr(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
