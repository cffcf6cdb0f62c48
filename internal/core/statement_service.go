package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StatementLine is one ledger entry in a supplier statement.
// RunningBalance is the cumulative payable position after this line
// (credit − debit so far; positive = the company still owes the supplier).
type StatementLine struct {
	EntryDate      string
	Kind           EntryKind
	DocumentRef    string
	Credit         decimal.Decimal
	Debit          decimal.Decimal
	PaidAmount     decimal.Decimal
	OpenBalance    decimal.Decimal
	Status         PaymentStatus
	RunningBalance decimal.Decimal
}

// SupplierStatement is a supplier's chronological ledger with its current
// reconciliation outcome.
type SupplierStatement struct {
	Supplier Supplier
	Lines    []StatementLine
}

// StatementService provides read-only statement queries over supplier ledgers.
type StatementService interface {
	// GetStatement returns the supplier's entries in the reconciliation
	// processing order (date ascending, purchases before payments on the same
	// date) with a running payable balance.
	GetStatement(ctx context.Context, accountCode string) (*SupplierStatement, error)
}

type statementService struct {
	pool      *pgxpool.Pool
	suppliers SupplierService
}

// NewStatementService constructs a StatementService backed by the given pool.
func NewStatementService(pool *pgxpool.Pool, suppliers SupplierService) StatementService {
	return &statementService{pool: pool, suppliers: suppliers}
}

func (s *statementService) GetStatement(ctx context.Context, accountCode string) (*SupplierStatement, error) {
	sup, err := s.suppliers.GetSupplierByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	// Same ordering the engine uses, so the statement reads as the matching ran.
	rows, err := s.pool.Query(ctx, `
		SELECT entry_date::text, entry_kind, COALESCE(document_ref, ''),
		       credit_amount, debit_amount, paid_amount, open_balance, status
		FROM ledger_entries
		WHERE supplier_id = $1
		ORDER BY entry_date,
		         CASE entry_kind WHEN 'PURCHASE' THEN 0 ELSE 1 END,
		         id`,
		sup.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query statement for supplier %q: %w", accountCode, err)
	}
	defer rows.Close()

	stmt := &SupplierStatement{Supplier: *sup}
	running := decimal.Zero
	for rows.Next() {
		var line StatementLine
		var kind, status string
		if err := rows.Scan(
			&line.EntryDate, &kind, &line.DocumentRef,
			&line.Credit, &line.Debit, &line.PaidAmount, &line.OpenBalance, &status,
		); err != nil {
			return nil, fmt.Errorf("scan statement line: %w", err)
		}
		line.Kind = EntryKind(kind)
		line.Status = PaymentStatus(status)
		running = running.Add(line.Credit).Sub(line.Debit)
		line.RunningBalance = running
		stmt.Lines = append(stmt.Lines, line)
	}
	return stmt, rows.Err()
}
