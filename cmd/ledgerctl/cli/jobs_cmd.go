package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newJobsCommand(a *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background ledger jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "trigger <task-type>",
		Short: "Enqueue a maintenance task, e.g. ledger:balances_reconcile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := a.jobs(cmd)
			if err != nil {
				return err
			}
			info, err := ops.Trigger(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show queue depth for the ledger and default queues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := a.jobs(cmd)
			if err != nil {
				return err
			}
			stats, err := ops.InspectQueues(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Archived)
			}
			return w.Flush()
		},
	})

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks of the ledger queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := a.jobs(cmd)
			if err != nil {
				return err
			}
			tasks, err := ops.ListScheduled(cmd.Context(), size)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.UTC().Format("2006-01-02T15:04:05Z")); err != nil {
					return err
				}
			}
			return nil
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "maximum number of tasks to list")
	cmd.AddCommand(scheduled)
	return cmd
}

func (a *runner) jobs(cmd *cobra.Command) (JobOps, error) {
	env, err := a.environment(cmd.Context())
	if err != nil {
		return nil, err
	}
	if env.Jobs == nil {
		return nil, errors.New("ledgerctl: job queue not configured")
	}
	return env.Jobs, nil
}
