package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris/internal/integration"
	jobmetrics "github.com/scholaris-erp/scholaris/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueLedger carries integration postings, processed ahead of maintenance work.
	QueueLedger = "ledger"
)

// Task types handled by the worker.
const (
	TaskBalancesReconcile   = "ledger:balances_reconcile"
	TaskGLIntegrity         = "ledger:gl_integrity"
	TaskPeriodRollover      = "ledger:period_rollover"
	TaskFeePayment          = "ledger:fee_payment"
	TaskPayrollDisbursement = "ledger:payroll_disbursement"
	TaskCashBankTransaction = "ledger:cash_bank"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ScheduledPayload carries the scheduling metadata of maintenance tasks.
type ScheduledPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// PeriodRolloverPayload selects the year and period type to generate. Zero
// values fall back to the current year and the configured type.
type PeriodRolloverPayload struct {
	Year       int    `json:"year,omitempty"`
	PeriodType string `json:"period_type,omitempty"`
}

func newJSONTask(taskType string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, opts...), nil
}

// NewBalancesReconcileTask builds the drift check task.
func NewBalancesReconcileTask(at time.Time) (*asynq.Task, error) {
	return newJSONTask(TaskBalancesReconcile, ScheduledPayload{ScheduledFor: at}, asynq.Queue(QueueDefault), asynq.Unique(30*time.Minute))
}

// NewGLIntegrityTask builds the trial balance integrity task.
func NewGLIntegrityTask(at time.Time) (*asynq.Task, error) {
	return newJSONTask(TaskGLIntegrity, ScheduledPayload{ScheduledFor: at}, asynq.Queue(QueueDefault))
}

// NewPeriodRolloverTask builds the period generation task.
func NewPeriodRolloverTask(payload PeriodRolloverPayload) (*asynq.Task, error) {
	return newJSONTask(TaskPeriodRollover, payload, asynq.Queue(QueueDefault))
}

// NewFeePaymentTask wraps a fee payment event for posting.
func NewFeePaymentTask(evt integration.FeePaymentPosted) (*asynq.Task, error) {
	return newJSONTask(TaskFeePayment, evt, asynq.Queue(QueueLedger), asynq.MaxRetry(10))
}

// NewPayrollDisbursementTask wraps a payroll disbursement event for posting.
func NewPayrollDisbursementTask(evt integration.PayrollDisbursed) (*asynq.Task, error) {
	return newJSONTask(TaskPayrollDisbursement, evt, asynq.Queue(QueueLedger), asynq.MaxRetry(10))
}

// NewCashBankTask wraps a cash/bank transaction for posting.
func NewCashBankTask(evt integration.CashBankTransaction) (*asynq.Task, error) {
	return newJSONTask(TaskCashBankTransaction, evt, asynq.Queue(QueueLedger), asynq.MaxRetry(10))
}

// NewTask builds a maintenance task by type, for operators triggering jobs by hand.
func NewTask(taskType string, now time.Time) (*asynq.Task, error) {
	switch taskType {
	case TaskBalancesReconcile:
		return NewBalancesReconcileTask(now)
	case TaskGLIntegrity:
		return NewGLIntegrityTask(now)
	case TaskPeriodRollover:
		return NewPeriodRolloverTask(PeriodRolloverPayload{})
	}
	return nil, &UnknownTaskError{Type: taskType}
}

// UnknownTaskError reports a task type with no maintenance constructor.
type UnknownTaskError struct {
	Type string
}

func (e *UnknownTaskError) Error() string {
	return "jobs: unknown task type " + e.Type
}
