package cli

import (
	"github.com/me/cpusched/internal/report"
	"github.com/spf13/cobra"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the supported scheduling policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report.Policies(cmd.OutOrStdout())
			return nil
		},
	}
}
