package cli

import (
	"supplier-recon/internal/app"

	"github.com/spf13/cobra"
)

func newStatementCmd(svc app.ApplicationService) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <account-code>",
		Short: "Show a supplier's ledger in matching order with running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := svc.GetStatement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStatement(stmt)
			return nil
		},
	}
}
