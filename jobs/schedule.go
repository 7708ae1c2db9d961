package jobs

import "time"

// Cron specs for ledger maintenance, evaluated in UTC.
const (
	CronBalancesReconcile = "@hourly"
	CronGLIntegrity       = "0 2 * * *"
	CronPeriodRollover    = "5 0 1 1 *"
)

// LedgerCron returns the maintenance schedule registered by the worker.
func LedgerCron(now time.Time) ([]CronRegistration, error) {
	reconcile, err := NewBalancesReconcileTask(now)
	if err != nil {
		return nil, err
	}
	integrity, err := NewGLIntegrityTask(now)
	if err != nil {
		return nil, err
	}
	rollover, err := NewPeriodRolloverTask(PeriodRolloverPayload{})
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: CronBalancesReconcile, Task: reconcile},
		{Spec: CronGLIntegrity, Task: integrity},
		{Spec: CronPeriodRollover, Task: rollover},
	}, nil
}
