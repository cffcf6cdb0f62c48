package cli

import (
	"supplier-recon/internal/app"

	"github.com/spf13/cobra"
)

func newSuppliersCmd(svc app.ApplicationService) *cobra.Command {
	var fileID int

	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "List suppliers with their reconciliation outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if fileID == 0 {
				file, err := svc.LoadDefaultImportFile(ctx)
				if err != nil {
					return err
				}
				fileID = file.ID
			}

			result, err := svc.ListSuppliers(ctx, fileID)
			if err != nil {
				return err
			}
			printSuppliers(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&fileID, "file", 0, "Import file id (default: newest)")
	return cmd
}

func newFilesCmd(svc app.ApplicationService) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List imported ledger files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := svc.ListImportFiles(cmd.Context())
			if err != nil {
				return err
			}
			printImportFiles(result)
			return nil
		},
	}
}
