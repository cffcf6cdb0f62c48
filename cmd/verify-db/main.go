// verify-db checks that the schema is in place and that the persisted
// reconciliation state is internally consistent. Run it after a batch to
// confirm nothing wrote a row the matching rules forbid.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type check struct {
	name  string
	query string
}

// Each query returns the number of OFFENDING rows; zero means the
// invariant holds.
var invariantChecks = []check{
	{
		name: "open_balance equals credit minus paid",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PURCHASE'
		          AND abs(open_balance - greatest(credit_amount - paid_amount, 0)) > 0.01`,
	},
	{
		name: "paid_amount never exceeds credit beyond tolerance",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PURCHASE'
		          AND paid_amount > credit_amount + 0.01`,
	},
	{
		name: "PAID invoices carry no open balance",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PURCHASE' AND status = 'PAID' AND open_balance <> 0`,
	},
	{
		name: "PENDING invoices are untouched",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PURCHASE' AND status = 'PENDING'
		          AND (paid_amount <> 0 OR open_balance <> credit_amount)`,
	},
	{
		name: "PARTIAL invoices have both a payment and a remainder",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PURCHASE' AND status = 'PARTIAL'
		          AND (paid_amount <= 0 OR open_balance <= 0.01)`,
	},
	{
		name: "payment rows never accumulate derived state",
		query: `SELECT COUNT(*) FROM ledger_entries
		        WHERE entry_kind = 'PAYMENT'
		          AND (paid_amount <> 0 OR status <> 'PENDING')`,
	},
	{
		name:  "supplier advance credits are non-negative",
		query: `SELECT COUNT(*) FROM suppliers WHERE advance_credit < 0`,
	},
	{
		name: "reconciled suppliers have consistent open/partial counts",
		query: `SELECT COUNT(*) FROM suppliers s
		        WHERE s.last_reconciled_at IS NOT NULL
		          AND (s.open_invoices, s.partial_invoices) <> (
		            SELECT (COUNT(*) FILTER (WHERE e.open_balance > 0.01),
		                    COUNT(*) FILTER (WHERE e.status = 'PARTIAL'))
		            FROM ledger_entries e
		            WHERE e.supplier_id = s.id AND e.entry_kind = 'PURCHASE'
		          )`,
	},
}

func main() {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("[CONNECT] DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := connectDB(ctx, url)
	defer pool.Close()

	verifySchema(ctx, pool)
	reportCounts(ctx, pool)

	failed := 0
	for _, c := range invariantChecks {
		var offenders int
		if err := pool.QueryRow(ctx, c.query).Scan(&offenders); err != nil {
			log.Fatalf("[ERROR] check %q failed to run: %v", c.name, err)
		}
		if offenders > 0 {
			failed++
			log.Printf("[FAIL] %s: %d offending rows", c.name, offenders)
		} else {
			log.Printf("[OK]   %s", c.name)
		}
	}

	if failed > 0 {
		log.Fatalf("[DONE] %d invariant check(s) failed", failed)
	}
	log.Println("[DONE] schema and invariants verified")
}

func connectDB(ctx context.Context, url string) *pgxpool.Pool {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("[CONNECT] failed to create pool: %v", err)
	}

	if err := pool.Ping(connCtx); err != nil {
		log.Fatalf("[CONNECT] failed to ping database: %v", err)
	}

	log.Println("[CONNECT] success")
	return pool
}

func verifySchema(ctx context.Context, pool *pgxpool.Pool) {
	for _, table := range []string{"import_files", "suppliers", "ledger_entries"} {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			log.Fatalf("[SCHEMA] failed to check table %s: %v", table, err)
		}
		if !exists {
			log.Fatalf("[SCHEMA] table %s is missing; run cmd/migrate first", table)
		}
	}
	log.Println("[SCHEMA] all tables present")
}

func reportCounts(ctx context.Context, pool *pgxpool.Pool) {
	var files, suppliers, purchases, payments int
	err := pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM import_files),
			(SELECT COUNT(*) FROM suppliers),
			(SELECT COUNT(*) FROM ledger_entries WHERE entry_kind = 'PURCHASE'),
			(SELECT COUNT(*) FROM ledger_entries WHERE entry_kind = 'PAYMENT')
	`).Scan(&files, &suppliers, &purchases, &payments)
	if err != nil {
		log.Fatalf("[ERROR] failed to count rows: %v", err)
	}
	log.Printf("[COUNT] import_files=%d suppliers=%d purchases=%d payments=%d",
		files, suppliers, purchases, payments)
}
