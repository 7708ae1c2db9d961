package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scholaris-erp/scholaris/internal/app"
	"github.com/scholaris-erp/scholaris/internal/rbac"
)

func newTokenCommand(a *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue API bearer tokens",
	}

	var actor int64
	var perms []string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for an actor; grants every ledger permission unless --perm is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor <= 0 {
				return errors.New("--actor must be a positive user id")
			}
			env, err := a.environment(cmd.Context())
			if err != nil {
				return err
			}
			granted := perms
			if len(granted) == 0 {
				granted = rbac.AllPermissions
			}
			token, err := app.IssueToken(env.TokenSecret, actor, granted, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	issue.Flags().Int64Var(&actor, "actor", 0, "user id placed in the subject claim (required)")
	_ = issue.MarkFlagRequired("actor")
	issue.Flags().StringSliceVar(&perms, "perm", nil, "permission to grant, repeatable")
	issue.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	cmd.AddCommand(issue)
	return cmd
}
