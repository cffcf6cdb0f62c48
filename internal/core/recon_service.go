package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SupplierFailure records one supplier whose reconciliation failed during a batch.
type SupplierFailure struct {
	SupplierID  int
	AccountCode string
	Err         error
}

// BatchSummary is the outcome of reconciling one import file.
type BatchSummary struct {
	RunID        string
	Reconciled   int
	NoInvoices   int // suppliers with payments only; flagged, no matching done
	Failed       int
	AdvanceTotal decimal.Decimal // advance credit carried across all suppliers
	Failures     []SupplierFailure
}

// ReconService runs FIFO reconciliation over persisted supplier ledgers.
type ReconService struct {
	ledger    *Ledger
	suppliers SupplierService
	log       zerolog.Logger
}

// NewReconService constructs a ReconService.
func NewReconService(ledger *Ledger, suppliers SupplierService, log zerolog.Logger) *ReconService {
	return &ReconService{ledger: ledger, suppliers: suppliers, log: log}
}

// ReconcileSupplier loads one supplier's ledger, runs the matching engine and
// commits the result atomically. The returned summary includes the residual
// advance credit even though no invoice row carries it.
func (s *ReconService) ReconcileSupplier(ctx context.Context, supplierID int) (ReconcileSummary, error) {
	purchases, payments, err := s.ledger.LoadEntries(ctx, supplierID)
	if err != nil {
		return ReconcileSummary{}, err
	}

	log := s.log.With().Int("supplier_id", supplierID).Logger()

	summary, err := ReconcileEntries(purchases, payments, func(ev MatchEvent) {
		log.Debug().
			Str("kind", string(ev.Kind)).
			Str("amount", ev.Amount.StringFixed(2)).
			Int("invoice_id", ev.InvoiceID).
			Bool("closed", ev.Closed).
			Msg("match step")
	})
	if err != nil {
		return summary, fmt.Errorf("reconcile supplier %d: %w", supplierID, err)
	}

	if summary.NoInvoices() {
		// No invoice to mutate, nothing to commit. The supplier still carries
		// the whole payment volume as credit; the batch driver flags it.
		log.Warn().
			Int("payments", summary.PaymentCount).
			Msg("supplier has payments but no purchase invoices")
		return summary, nil
	}

	if err := s.ledger.SaveReconciliation(ctx, supplierID, purchases, summary); err != nil {
		return summary, err
	}

	log.Info().
		Int("invoices", summary.InvoiceCount).
		Int("payments", summary.PaymentCount).
		Int("open", summary.OpenInvoices).
		Int("partial", summary.PartialInvoices).
		Str("advance_credit", summary.AdvanceCredit.StringFixed(2)).
		Msg("supplier reconciled")
	return summary, nil
}

// ReconcileImportFile reconciles every supplier of an import file that has
// non-zero lifetime credit or debit. A failure in one supplier's data is
// recorded and logged, and the batch continues with the next supplier; the
// failed supplier's previously persisted state is left untouched.
func (s *ReconService) ReconcileImportFile(ctx context.Context, importFileID int) (*BatchSummary, error) {
	suppliers, err := s.suppliers.GetReconcilable(ctx, importFileID)
	if err != nil {
		return nil, err
	}

	batch := &BatchSummary{
		RunID:        uuid.NewString(),
		AdvanceTotal: decimal.Zero,
	}
	log := s.log.With().
		Str("run_id", batch.RunID).
		Int("import_file_id", importFileID).
		Logger()
	log.Info().Int("suppliers", len(suppliers)).Msg("starting flexible FIFO reconciliation")

	for _, sup := range suppliers {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		summary, err := s.ReconcileSupplier(ctx, sup.ID)
		if err != nil {
			batch.Failed++
			batch.Failures = append(batch.Failures, SupplierFailure{
				SupplierID:  sup.ID,
				AccountCode: sup.AccountCode,
				Err:         err,
			})
			log.Error().Err(err).
				Int("supplier_id", sup.ID).
				Str("account_code", sup.AccountCode).
				Msg("supplier reconciliation failed, continuing batch")
			if rerr := s.suppliers.RecordFailure(ctx, sup.ID, err.Error()); rerr != nil {
				log.Error().Err(rerr).Int("supplier_id", sup.ID).Msg("failed to record failure")
			}
			continue
		}

		if summary.NoInvoices() {
			batch.NoInvoices++
			continue
		}
		batch.Reconciled++
		batch.AdvanceTotal = batch.AdvanceTotal.Add(summary.AdvanceCredit)
	}

	log.Info().
		Int("reconciled", batch.Reconciled).
		Int("no_invoices", batch.NoInvoices).
		Int("failed", batch.Failed).
		Str("advance_total", batch.AdvanceTotal.StringFixed(2)).
		Msg("reconciliation batch finished")
	return batch, nil
}
