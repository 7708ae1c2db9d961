package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/reports"
	closepkg "github.com/scholaris-erp/scholaris/internal/close"
)

// BalanceRecalculator rebuilds materialized balances.
type BalanceRecalculator interface {
	RecalculateAll(ctx context.Context) error
}

// TrialBalanceReporter builds trial balances.
type TrialBalanceReporter interface {
	Generate(ctx context.Context, q reports.Query) (reports.TrialBalance, error)
}

// PeriodGenerator creates the periods of a year.
type PeriodGenerator interface {
	GenerateYear(ctx context.Context, year int, rawType string) ([]periods.Period, error)
}

// PeriodCloser previews, closes and reopens periods.
type PeriodCloser interface {
	GetClosingPreview(ctx context.Context, periodID int64) (closepkg.Preview, error)
	ClosePeriod(ctx context.Context, periodID, actorID int64) (closepkg.Result, error)
	ReopenPeriod(ctx context.Context, periodID, actorID int64) (closepkg.ReopenResult, error)
}

// JobOps manages the worker queues.
type JobOps interface {
	Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error)
	InspectQueues(ctx context.Context) ([]QueueStats, error)
	ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error)
}

// Env carries the services a command runs against.
type Env struct {
	Balances    BalanceRecalculator
	Reports     TrialBalanceReporter
	Periods     PeriodGenerator
	Close       PeriodCloser
	Jobs        JobOps
	TokenSecret string
}

// Loader opens the environment on first use, so commands that fail flag
// parsing never touch the database.
type Loader func(ctx context.Context) (*Env, error)

type runner struct {
	load Loader
	env  *Env
	now  func() time.Time
}

func (a *runner) environment(ctx context.Context) (*Env, error) {
	if a.env != nil {
		return a.env, nil
	}
	if a.load == nil {
		return nil, errors.New("ledgerctl: environment loader not configured")
	}
	env, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	a.env = env
	return env, nil
}

// NewRootCommand builds the ledgerctl command tree.
func NewRootCommand(load Loader) *cobra.Command {
	a := &runner{load: load, now: func() time.Time { return time.Now().UTC() }}
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the Scholaris general ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.AddCommand(
		newBalancesCommand(a),
		newTrialBalanceCommand(a),
		newPeriodsCommand(a),
		newJobsCommand(a),
		newTokenCommand(a),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
