package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger stores and retrieves supplier ledger entries.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

const entryColumns = `id, supplier_id, entry_kind, entry_date, document_ref,
       credit_amount, debit_amount, paid_amount, open_balance, status, created_at`

func scanEntry(row pgx.Row) (*LedgerEntry, error) {
	e := &LedgerEntry{}
	var kind, status string
	if err := row.Scan(
		&e.ID, &e.SupplierID, &kind, &e.EntryDate, &e.DocumentRef,
		&e.CreditAmount, &e.DebitAmount, &e.PaidAmount, &e.OpenBalance, &status, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Kind = EntryKind(kind)
	e.Status = PaymentStatus(status)
	return e, nil
}

// LoadEntries returns one supplier's purchases and payments, each ordered by
// entry date ascending (ties by id, the insertion order of the source file).
func (l *Ledger) LoadEntries(ctx context.Context, supplierID int) (purchases, payments []*LedgerEntry, err error) {
	rows, err := l.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE supplier_id = $1
		ORDER BY entry_date, id`,
		supplierID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load entries for supplier %d: %w", supplierID, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		switch e.Kind {
		case EntryPurchase:
			purchases = append(purchases, e)
		case EntryPayment:
			payments = append(payments, e)
		default:
			return nil, nil, fmt.Errorf("entry %d: unknown kind %q", e.ID, e.Kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return purchases, payments, nil
}

// InsertEntry inserts one ledger entry and returns its id. Derived columns
// start at their reset values (paid 0, balance = credit, PENDING).
func (l *Ledger) InsertEntry(ctx context.Context, e *LedgerEntry) (int, error) {
	var id int
	err := l.pool.QueryRow(ctx, `
		INSERT INTO ledger_entries
			(supplier_id, entry_kind, entry_date, document_ref,
			 credit_amount, debit_amount, paid_amount, open_balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $5, $7)
		RETURNING id`,
		e.SupplierID, string(e.Kind), e.EntryDate, e.DocumentRef,
		e.CreditAmount, e.DebitAmount, string(StatusPending),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry for supplier %d: %w", e.SupplierID, err)
	}
	return id, nil
}

// SaveReconciliation persists the outcome of one reconciliation run in a
// single transaction: every purchase's derived fields plus the supplier's
// summary counts and advance credit become visible together or not at all.
// A supplier is never observable mid-reconciliation.
func (l *Ledger) SaveReconciliation(ctx context.Context, supplierID int, purchases []*LedgerEntry, sum ReconcileSummary) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reconciliation commit: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, inv := range purchases {
		if inv.OpenBalance.IsNegative() {
			return fmt.Errorf("refusing to persist invoice %d with negative balance %s", inv.ID, inv.OpenBalance)
		}
		tag, err := tx.Exec(ctx, `
			UPDATE ledger_entries
			SET paid_amount = $1, open_balance = $2, status = $3
			WHERE id = $4 AND entry_kind = $5`,
			inv.PaidAmount, inv.OpenBalance, string(inv.Status), inv.ID, string(EntryPurchase),
		)
		if err != nil {
			return fmt.Errorf("update invoice %d: %w", inv.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("invoice %d vanished during reconciliation", inv.ID)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE suppliers
		SET open_invoices = $1,
		    partial_invoices = $2,
		    advance_credit = $3,
		    last_reconciled_at = NOW(),
		    last_error = NULL
		WHERE id = $4`,
		sum.OpenInvoices, sum.PartialInvoices, sum.AdvanceCredit, supplierID,
	)
	if err != nil {
		return fmt.Errorf("update supplier %d summary: %w", supplierID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reconciliation for supplier %d: %w", supplierID, err)
	}
	return nil
}

// GetEntry returns a single ledger entry by id.
func (l *Ledger) GetEntry(ctx context.Context, id int) (*LedgerEntry, error) {
	e, err := scanEntry(l.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ledger entry %d not found", id)
		}
		return nil, fmt.Errorf("fetch ledger entry %d: %w", id, err)
	}
	return e, nil
}
