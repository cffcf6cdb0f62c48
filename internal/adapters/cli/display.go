package cli

import (
	"fmt"
	"strings"

	"supplier-recon/internal/app"
	"supplier-recon/internal/core"
)

func printReconResult(result *app.ReconResult) {
	sup := result.Supplier
	sum := result.Summary

	fmt.Println()
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  RECONCILIATION — %s (%s)\n", sup.Name, sup.AccountCode)
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  Invoices processed : %d\n", sum.InvoiceCount)
	fmt.Printf("  Payments processed : %d\n", sum.PaymentCount)
	fmt.Printf("  Still open         : %d\n", sum.OpenInvoices)
	fmt.Printf("  Partially paid     : %d\n", sum.PartialInvoices)
	fmt.Printf("  Applied total      : %s\n", sum.AppliedTotal.StringFixed(2))
	fmt.Printf("  Advance credit     : %s\n", sum.AdvanceCredit.StringFixed(2))
	if sum.NoInvoices() {
		fmt.Println()
		fmt.Println("  NOTE: supplier has payments but no invoices — the whole payment")
		fmt.Println("  volume is a supplier credit; nothing was matched or persisted.")
	} else if sum.AdvanceCredit.IsPositive() {
		fmt.Println()
		fmt.Println("  Supplier carries a CREDIT balance (company paid in advance).")
	}
	fmt.Println(strings.Repeat("=", 66))
}

func printBatchSummary(batch *core.BatchSummary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  BATCH RECONCILIATION  run %s\n", batch.RunID)
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  Reconciled        : %d\n", batch.Reconciled)
	fmt.Printf("  Payments only     : %d\n", batch.NoInvoices)
	fmt.Printf("  Failed            : %d\n", batch.Failed)
	fmt.Printf("  Advance total     : %s\n", batch.AdvanceTotal.StringFixed(2))
	for _, f := range batch.Failures {
		fmt.Printf("    FAILED %-12s %v\n", f.AccountCode, f.Err)
	}
	fmt.Println(strings.Repeat("=", 66))
}

func printSuppliers(result *app.SupplierListResult) {
	fmt.Println()
	fmt.Printf("  Suppliers of import file %d\n", result.ImportFileID)
	fmt.Println(strings.Repeat("-", 92))
	fmt.Printf("  %-12s %-32s %12s %12s %5s %5s %10s\n",
		"CODE", "NAME", "CREDIT", "DEBIT", "OPEN", "PART", "ADVANCE")
	fmt.Println(strings.Repeat("-", 92))
	for _, s := range result.Suppliers {
		name := s.Name
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		fmt.Printf("  %-12s %-32s %12s %12s %5d %5d %10s\n",
			s.AccountCode, name,
			s.TotalCredit.StringFixed(2), s.TotalDebit.StringFixed(2),
			s.OpenInvoices, s.PartialInvoices, s.AdvanceCredit.StringFixed(2))
		if s.LastError != nil {
			fmt.Printf("  %12s last error: %s\n", "", *s.LastError)
		}
	}
	fmt.Println(strings.Repeat("-", 92))
}

func printStatement(stmt *core.SupplierStatement) {
	sup := stmt.Supplier
	fmt.Println()
	fmt.Println(strings.Repeat("=", 96))
	fmt.Printf("  STATEMENT — %s (%s)\n", sup.Name, sup.AccountCode)
	if sup.LastReconciledAt != nil {
		fmt.Printf("  Last reconciled: %s\n", sup.LastReconciledAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Println(strings.Repeat("=", 96))
	fmt.Printf("  %-12s %-10s %-14s %10s %10s %10s %10s %-8s\n",
		"DATE", "KIND", "DOCUMENT", "CREDIT", "DEBIT", "BALANCE", "RUNNING", "STATUS")
	fmt.Println(strings.Repeat("-", 96))
	for _, l := range stmt.Lines {
		status := ""
		if l.Kind == core.EntryPurchase {
			status = string(l.Status)
		}
		fmt.Printf("  %-12s %-10s %-14s %10s %10s %10s %10s %-8s\n",
			l.EntryDate, l.Kind, l.DocumentRef,
			l.Credit.StringFixed(2), l.Debit.StringFixed(2),
			l.OpenBalance.StringFixed(2), l.RunningBalance.StringFixed(2), status)
	}
	fmt.Println(strings.Repeat("-", 96))
	fmt.Printf("  Open: %d   Partial: %d   Advance credit: %s\n",
		sup.OpenInvoices, sup.PartialInvoices, sup.AdvanceCredit.StringFixed(2))
	fmt.Println(strings.Repeat("=", 96))
}

func printImportFiles(result *app.ImportFileListResult) {
	fmt.Println()
	fmt.Printf("  %-6s %-48s %s\n", "ID", "FILENAME", "IMPORTED")
	fmt.Println(strings.Repeat("-", 80))
	for _, f := range result.Files {
		fmt.Printf("  %-6d %-48s %s\n", f.ID, f.Filename, f.ImportedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("-", 80))
}
