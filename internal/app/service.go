package app

import (
	"context"

	"supplier-recon/internal/core"
)

// ApplicationService is the single interface presentation adapters call.
// It decouples the CLI from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ReconcileSupplier runs flexible FIFO reconciliation for one supplier,
	// addressed by account code, and commits the result.
	ReconcileSupplier(ctx context.Context, accountCode string) (*ReconResult, error)

	// ReconcileImportFile reconciles every eligible supplier of an import
	// file. Per-supplier failures are recorded and do not abort the batch.
	ReconcileImportFile(ctx context.Context, importFileID int) (*core.BatchSummary, error)

	// ListSuppliers returns all suppliers of an import file with their
	// current reconciliation outcome.
	ListSuppliers(ctx context.Context, importFileID int) (*SupplierListResult, error)

	// GetStatement returns one supplier's chronological ledger statement.
	GetStatement(ctx context.Context, accountCode string) (*core.SupplierStatement, error)

	// ListImportFiles returns all import files, newest first.
	ListImportFiles(ctx context.Context) (*ImportFileListResult, error)

	// LoadDefaultImportFile returns the import file commands operate on when
	// none is given: IMPORT_FILE_ID from the environment if set, otherwise
	// the most recently imported file.
	LoadDefaultImportFile(ctx context.Context) (*core.ImportFile, error)
}
