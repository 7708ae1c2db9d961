package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scholaris-erp/scholaris/internal/accounting/reports"
)

const dateLayout = "2006-01-02"

func newBalancesCommand(a *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Maintain materialized account balances",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "recalc",
		Short: "Rebuild every account balance from posted journal lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment(cmd.Context())
			if err != nil {
				return err
			}
			if env.Balances == nil {
				return errors.New("ledgerctl: balances service not configured")
			}
			if err := env.Balances.RecalculateAll(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "balances recalculated")
			return err
		},
	})
	return cmd
}

func newTrialBalanceCommand(a *runner) *cobra.Command {
	var asOf, start, end string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance as of a date or for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(asOf, start, end, a.now())
			if err != nil {
				return err
			}
			env, err := a.environment(cmd.Context())
			if err != nil {
				return err
			}
			if env.Reports == nil {
				return errors.New("ledgerctl: reports service not configured")
			}
			tb, err := env.Reports.Generate(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asCSV {
				return reports.WriteTrialBalanceCSV(cmd.OutOrStdout(), tb)
			}
			return printTrialBalance(cmd, tb)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "as-of date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "range end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func buildQuery(asOf, start, end string, now time.Time) (reports.Query, error) {
	var q reports.Query
	parse := func(flag, raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", flag, raw)
		}
		return &t, nil
	}
	var err error
	if q.AsOf, err = parse("as-of", asOf); err != nil {
		return q, err
	}
	if q.Start, err = parse("start", start); err != nil {
		return q, err
	}
	if q.End, err = parse("end", end); err != nil {
		return q, err
	}
	if q.AsOf == nil && q.Start == nil && q.End == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		q.AsOf = &today
	}
	return q, q.Validate()
}

func printTrialBalance(cmd *cobra.Command, tb reports.TrialBalance) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CODE\tNAME\tTYPE\tDEBIT\tCREDIT\tBALANCE\t")
	for _, row := range tb.Accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Code, row.Name, row.Type,
			row.Debit.StringFixed(2), row.Credit.StringFixed(2), row.Balance.StringFixed(2))
	}
	fmt.Fprintf(w, "\tTOTAL\t\t%s\t%s\t%s\t\n",
		tb.Totals.Debit.StringFixed(2), tb.Totals.Credit.StringFixed(2), tb.Totals.Difference.StringFixed(2))
	if err := w.Flush(); err != nil {
		return err
	}
	if !tb.IsBalanced {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "WARNING: trial balance is out of balance")
		return err
	}
	return nil
}
