// seed is a one-shot tool that loads a demo supplier ledger.
// It gives the reconcile commands something realistic to chew on: partial
// payment chains, an advance payment, an exact payoff and a payments-only
// supplier.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"supplier-recon/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing previous demo data...")
	_, err = tx.Exec(ctx, `
		DELETE FROM ledger_entries WHERE supplier_id IN (
			SELECT s.id FROM suppliers s
			JOIN import_files f ON f.id = s.import_file_id
			WHERE f.filename = 'demo_razao_fornecedores.xlsx'
		);
		DELETE FROM suppliers WHERE import_file_id IN (
			SELECT id FROM import_files WHERE filename = 'demo_razao_fornecedores.xlsx'
		);
		DELETE FROM import_files WHERE filename = 'demo_razao_fornecedores.xlsx';
	`)
	if err != nil {
		log.Fatalf("Failed to clear demo data: %v", err)
	}

	log.Println("Creating demo import file...")
	var fileID int
	err = tx.QueryRow(ctx, `
		INSERT INTO import_files (filename) VALUES ('demo_razao_fornecedores.xlsx')
		RETURNING id
	`).Scan(&fileID)
	if err != nil {
		log.Fatalf("Failed to create import file: %v", err)
	}

	log.Println("Creating demo suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (import_file_id, account_code, name, total_credit, total_debit)
		VALUES
		    ($1, '2.01.001', 'ACME Industrial Ltda',     650.00, 520.00),
		    ($1, '2.01.002', 'Beta Pecas e Servicos SA', 300.00, 450.00),
		    ($1, '2.01.003', 'Gama Transportes ME',        0.00, 180.00),
		    ($1, '2.01.004', 'Delta Embalagens Ltda',    120.00, 120.00)
	`, fileID)
	if err != nil {
		log.Fatalf("Failed to create suppliers: %v", err)
	}

	log.Println("Creating demo ledger entries...")
	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_entries
		    (supplier_id, entry_kind, entry_date, document_ref, credit_amount, debit_amount, open_balance)
		SELECT s.id, e.kind, e.entry_date::date, e.doc, e.credit, e.debit, e.credit
		FROM suppliers s
		JOIN import_files f ON f.id = s.import_file_id AND f.filename = 'demo_razao_fornecedores.xlsx'
		JOIN (VALUES
		    -- ACME: partial chain across several payments, one invoice left open.
		    ('2.01.001', 'PURCHASE', '2024-01-05', 'NF-1001', 250.00,   0.00),
		    ('2.01.001', 'PURCHASE', '2024-02-02', 'NF-1042', 400.00,   0.00),
		    ('2.01.001', 'PAYMENT',  '2024-01-20', NULL,        0.00, 100.00),
		    ('2.01.001', 'PAYMENT',  '2024-02-15', NULL,        0.00, 300.00),
		    ('2.01.001', 'PAYMENT',  '2024-03-01', NULL,        0.00, 120.00),
		    -- Beta: advance before the invoice, payments exceed all invoices.
		    ('2.01.002', 'PAYMENT',  '2024-01-10', NULL,        0.00, 200.00),
		    ('2.01.002', 'PURCHASE', '2024-01-25', 'NF-2010', 300.00,   0.00),
		    ('2.01.002', 'PAYMENT',  '2024-02-08', NULL,        0.00, 250.00),
		    -- Gama: payments only, no invoice ever arrives.
		    ('2.01.003', 'PAYMENT',  '2024-01-15', NULL,        0.00,  80.00),
		    ('2.01.003', 'PAYMENT',  '2024-02-15', NULL,        0.00, 100.00),
		    -- Delta: same-day invoice and payment, exact payoff.
		    ('2.01.004', 'PURCHASE', '2024-03-01', 'NF-4004', 120.00,   0.00),
		    ('2.01.004', 'PAYMENT',  '2024-03-01', NULL,        0.00, 120.00)
		) AS e(code, kind, entry_date, doc, credit, debit)
		  ON e.code = s.account_code
	`)
	if err != nil {
		log.Fatalf("Failed to create ledger entries: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Printf("Demo ledger seeded (import file %d). Try: recon reconcile --file %d", fileID, fileID)
	os.Exit(0)
}
