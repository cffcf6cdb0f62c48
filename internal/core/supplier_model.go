package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is one vendor account extracted from an imported ledger file.
// TotalCredit and TotalDebit are lifetime sums over the supplier's entries;
// OpenInvoices, PartialInvoices and AdvanceCredit are the persisted outcome
// of the most recent reconciliation run.
type Supplier struct {
	ID               int
	ImportFileID     int
	AccountCode      string
	Name             string
	TotalCredit      decimal.Decimal
	TotalDebit       decimal.Decimal
	OpenInvoices     int
	PartialInvoices  int
	AdvanceCredit    decimal.Decimal
	LastReconciledAt *time.Time
	LastError        *string
	CreatedAt        time.Time
}

// ImportFile groups the suppliers and ledger entries loaded from one source
// accounting export. Reconciliation batches are scoped to a single file.
type ImportFile struct {
	ID         int
	Filename   string
	ImportedAt time.Time
}

// SupplierInput holds the fields required to create a new supplier.
type SupplierInput struct {
	ImportFileID int
	AccountCode  string
	Name         string
	TotalCredit  decimal.Decimal
	TotalDebit   decimal.Decimal
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	// CreateSupplier inserts a new supplier under the given import file.
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)

	// GetSuppliers returns all suppliers for an import file, ordered by account code.
	GetSuppliers(ctx context.Context, importFileID int) ([]Supplier, error)

	// GetSupplierByCode returns a supplier by account code.
	GetSupplierByCode(ctx context.Context, accountCode string) (*Supplier, error)

	// GetReconcilable returns the suppliers of an import file with non-zero
	// lifetime credit or debit totals — the only ones worth reconciling.
	GetReconcilable(ctx context.Context, importFileID int) ([]Supplier, error)

	// RecordFailure stores the failure message of the supplier's last
	// reconciliation attempt without touching any other state.
	RecordFailure(ctx context.Context, supplierID int, msg string) error

	// GetImportFiles returns all import files, newest first.
	GetImportFiles(ctx context.Context) ([]ImportFile, error)
}
