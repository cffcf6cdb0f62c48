package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, import_file_id, account_code, name,
       total_credit, total_debit, open_invoices, partial_invoices, advance_credit,
       last_reconciled_at, last_error, created_at`

func scanSupplier(row pgx.Row, s *Supplier) error {
	return row.Scan(
		&s.ID, &s.ImportFileID, &s.AccountCode, &s.Name,
		&s.TotalCredit, &s.TotalDebit, &s.OpenInvoices, &s.PartialInvoices, &s.AdvanceCredit,
		&s.LastReconciledAt, &s.LastError, &s.CreatedAt,
	)
}

// CreateSupplier inserts a new supplier record under the given import file.
func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	sup := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (import_file_id, account_code, name, total_credit, total_debit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+supplierColumns,
		input.ImportFileID, input.AccountCode, input.Name, input.TotalCredit, input.TotalDebit,
	), sup)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.AccountCode, err)
	}
	return sup, nil
}

// GetSuppliers returns all suppliers for an import file, ordered by account code.
func (s *supplierService) GetSuppliers(ctx context.Context, importFileID int) ([]Supplier, error) {
	return s.querySuppliers(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE import_file_id = $1
		ORDER BY account_code`,
		importFileID,
	)
}

// GetReconcilable returns suppliers with non-zero lifetime credit or debit.
// Suppliers whose entries net to nothing on both sides have nothing to match
// and are skipped by the batch driver.
func (s *supplierService) GetReconcilable(ctx context.Context, importFileID int) ([]Supplier, error) {
	return s.querySuppliers(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE import_file_id = $1
		  AND (total_credit > 0 OR total_debit > 0)
		ORDER BY account_code`,
		importFileID,
	)
}

func (s *supplierService) querySuppliers(ctx context.Context, query string, args ...any) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := scanSupplier(rows, &sup); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

// GetSupplierByCode returns a supplier by its account code.
func (s *supplierService) GetSupplierByCode(ctx context.Context, accountCode string) (*Supplier, error) {
	sup := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE account_code = $1`,
		accountCode,
	), sup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %q not found", accountCode)
		}
		return nil, fmt.Errorf("fetch supplier %q: %w", accountCode, err)
	}
	return sup, nil
}

// RecordFailure stores the last reconciliation failure for a supplier.
// Prior reconciliation results stay untouched — a failed run never clobbers
// the last successful commit.
func (s *supplierService) RecordFailure(ctx context.Context, supplierID int, msg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE suppliers SET last_error = $1 WHERE id = $2`,
		msg, supplierID,
	)
	if err != nil {
		return fmt.Errorf("record failure for supplier %d: %w", supplierID, err)
	}
	return nil
}

// GetImportFiles returns all import files, newest first.
func (s *supplierService) GetImportFiles(ctx context.Context) ([]ImportFile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, imported_at
		FROM import_files
		ORDER BY imported_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query import files: %w", err)
	}
	defer rows.Close()

	var files []ImportFile
	for rows.Next() {
		var f ImportFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan import file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
