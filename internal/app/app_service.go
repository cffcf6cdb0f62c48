package app

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"supplier-recon/internal/core"
)

type appService struct {
	recon      *core.ReconService
	suppliers  core.SupplierService
	statements core.StatementService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	recon *core.ReconService,
	suppliers core.SupplierService,
	statements core.StatementService,
) ApplicationService {
	return &appService{
		recon:      recon,
		suppliers:  suppliers,
		statements: statements,
	}
}

// ReconcileSupplier runs FIFO reconciliation for one supplier by account code.
func (s *appService) ReconcileSupplier(ctx context.Context, accountCode string) (*ReconResult, error) {
	sup, err := s.suppliers.GetSupplierByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	summary, err := s.recon.ReconcileSupplier(ctx, sup.ID)
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the persisted counts, not the pre-run row.
	sup, err = s.suppliers.GetSupplierByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	return &ReconResult{Supplier: sup, Summary: summary}, nil
}

// ReconcileImportFile reconciles every eligible supplier of an import file.
func (s *appService) ReconcileImportFile(ctx context.Context, importFileID int) (*core.BatchSummary, error) {
	return s.recon.ReconcileImportFile(ctx, importFileID)
}

// ListSuppliers returns all suppliers of an import file.
func (s *appService) ListSuppliers(ctx context.Context, importFileID int) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.GetSuppliers(ctx, importFileID)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{ImportFileID: importFileID, Suppliers: suppliers}, nil
}

// GetStatement returns one supplier's chronological ledger statement.
func (s *appService) GetStatement(ctx context.Context, accountCode string) (*core.SupplierStatement, error) {
	return s.statements.GetStatement(ctx, accountCode)
}

// ListImportFiles returns all import files, newest first.
func (s *appService) ListImportFiles(ctx context.Context) (*ImportFileListResult, error) {
	files, err := s.suppliers.GetImportFiles(ctx)
	if err != nil {
		return nil, err
	}
	return &ImportFileListResult{Files: files}, nil
}

// LoadDefaultImportFile resolves the import file to operate on.
func (s *appService) LoadDefaultImportFile(ctx context.Context) (*core.ImportFile, error) {
	files, err := s.suppliers.GetImportFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no import files found, has any ledger been imported?")
	}

	if v := os.Getenv("IMPORT_FILE_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IMPORT_FILE_ID %q", v)
		}
		for i := range files {
			if files[i].ID == id {
				return &files[i], nil
			}
		}
		return nil, fmt.Errorf("import file %d not found", id)
	}

	// Newest first per GetImportFiles ordering.
	return &files[0], nil
}
