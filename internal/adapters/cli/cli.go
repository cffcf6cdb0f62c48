// Package cli is the cobra command tree over the ApplicationService.
// It contains presentation only; all business logic lives behind the service.
package cli

import (
	"supplier-recon/internal/app"

	"github.com/spf13/cobra"
)

// New builds the root command with all subcommands attached.
func New(svc app.ApplicationService) *cobra.Command {
	root := &cobra.Command{
		Use:   "recon",
		Short: "Flexible FIFO reconciliation of supplier invoices and payments",
		Long: `recon matches a supplier's purchase invoices against payments using
flexible FIFO: the oldest open invoice always receives funds first, payments
made before any invoice accrue as advances, and payments exceeding all open
invoices become supplier credit.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newReconcileCmd(svc),
		newSuppliersCmd(svc),
		newStatementCmd(svc),
		newFilesCmd(svc),
	)
	return root
}
