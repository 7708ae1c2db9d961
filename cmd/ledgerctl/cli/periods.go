package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPeriodsCommand(a *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Generate, preview, close and reopen accounting periods",
	}
	cmd.AddCommand(
		newPeriodsGenerateCommand(a),
		newPeriodsPreviewCommand(a),
		newPeriodsCloseCommand(a),
		newPeriodsReopenCommand(a),
	)
	return cmd
}

func newPeriodsGenerateCommand(a *runner) *cobra.Command {
	var year int
	var periodType string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the periods of a year, skipping ones that overlap existing periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment(cmd.Context())
			if err != nil {
				return err
			}
			if env.Periods == nil {
				return errors.New("ledgerctl: periods service not configured")
			}
			created, err := env.Periods.GenerateYear(cmd.Context(), year, periodType)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), created)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year to generate (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&periodType, "type", "monthly", "period type: monthly, quarterly or yearly")
	return cmd
}

func newPeriodsPreviewCommand(a *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <period-id>",
		Short: "Show revenue, expenses and net income a close would transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePeriodID(args[0])
			if err != nil {
				return err
			}
			closer, err := a.closer(cmd)
			if err != nil {
				return err
			}
			preview, err := closer.GetClosingPreview(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), preview)
		},
	}
}

func newPeriodsCloseCommand(a *runner) *cobra.Command {
	var actor int64
	cmd := &cobra.Command{
		Use:   "close <period-id>",
		Short: "Post the closing entry and mark the period closed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePeriodID(args[0])
			if err != nil {
				return err
			}
			closer, err := a.closer(cmd)
			if err != nil {
				return err
			}
			result, err := closer.ClosePeriod(cmd.Context(), id, actor)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&actor, "actor", 0, "user id recorded as the closer")
	return cmd
}

func newPeriodsReopenCommand(a *runner) *cobra.Command {
	var actor int64
	cmd := &cobra.Command{
		Use:   "reopen <period-id>",
		Short: "Delete the closing entry and mark the period open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePeriodID(args[0])
			if err != nil {
				return err
			}
			closer, err := a.closer(cmd)
			if err != nil {
				return err
			}
			result, err := closer.ReopenPeriod(cmd.Context(), id, actor)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&actor, "actor", 0, "user id recorded as the reopener")
	return cmd
}

func (a *runner) closer(cmd *cobra.Command) (PeriodCloser, error) {
	env, err := a.environment(cmd.Context())
	if err != nil {
		return nil, err
	}
	if env.Close == nil {
		return nil, errors.New("ledgerctl: close service not configured")
	}
	return env.Close, nil
}

func parsePeriodID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid period id %q", raw)
	}
	return id, nil
}
