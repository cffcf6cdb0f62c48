package app

import "supplier-recon/internal/core"

// ReconResult is returned by ReconcileSupplier.
type ReconResult struct {
	Supplier *core.Supplier
	Summary  core.ReconcileSummary
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	ImportFileID int
	Suppliers    []core.Supplier
}

// ImportFileListResult is returned by ListImportFiles.
type ImportFileListResult struct {
	Files []core.ImportFile
}
