package cli

import (
	"fmt"

	"supplier-recon/internal/app"
	"supplier-recon/internal/logger"

	"github.com/spf13/cobra"
)

func newReconcileCmd(svc app.ApplicationService) *cobra.Command {
	var fileID int

	cmd := &cobra.Command{
		Use:   "reconcile [account-code]",
		Short: "Reconcile one supplier, or a whole import file",
		Long: `Reconcile applies every payment to a supplier's invoices in FIFO order.

With an account code, a single supplier is reconciled. Without one, every
supplier of the import file with non-zero lifetime credit or debit is
processed; a failure in one supplier is logged and the batch continues.`,
		Example: `  # One supplier
  recon reconcile 2.01.001

  # Every supplier of the newest import file
  recon reconcile

  # Every supplier of a specific import file
  recon reconcile --file 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) == 1 {
				result, err := svc.ReconcileSupplier(ctx, args[0])
				if err != nil {
					return err
				}
				printReconResult(result)
				return nil
			}

			if fileID == 0 {
				file, err := svc.LoadDefaultImportFile(ctx)
				if err != nil {
					return err
				}
				fileID = file.ID
			}

			log := logger.WithComponent("reconcile")
			log.Info().Int("import_file_id", fileID).Msg("reconciling import file")

			batch, err := svc.ReconcileImportFile(ctx, fileID)
			if err != nil {
				return err
			}
			printBatchSummary(batch)
			if batch.Failed > 0 {
				return fmt.Errorf("%d supplier(s) failed to reconcile", batch.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&fileID, "file", 0, "Import file id to reconcile (default: newest)")
	return cmd
}
