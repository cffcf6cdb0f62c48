package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tolerance below which a remaining balance is treated as fully paid.
// The same threshold decides both "is this invoice still open" and the
// clamp-to-zero on residual cents, so repeated partial applications cannot
// leave an invoice stuck one cent short of PAID.
var Tolerance = decimal.New(1, -2) // 0.01

// ReconcileSummary is the outcome of one supplier reconciliation run.
type ReconcileSummary struct {
	InvoiceCount    int // purchases seen by the run
	PaymentCount    int // payments seen by the run
	OpenInvoices    int // purchases with balance still above Tolerance
	PartialInvoices int // purchases left in PARTIAL status
	// AppliedTotal is the payment value applied to invoices; AdvanceCredit is
	// the payment value that found no open invoice. Their sum always equals
	// the sum of all payment amounts.
	AppliedTotal  decimal.Decimal
	AdvanceCredit decimal.Decimal
}

// NoInvoices reports the degenerate case of a supplier with payments but no
// purchases. The engine performs no matching then; the caller decides how to
// account for the payment volume.
func (s ReconcileSummary) NoInvoices() bool {
	return s.InvoiceCount == 0 && s.PaymentCount > 0
}

// MatchEventKind classifies a single step of the matching cascade.
type MatchEventKind string

const (
	// MatchPaymentApplied: part of a payment was applied to the oldest open invoice.
	MatchPaymentApplied MatchEventKind = "PAYMENT_APPLIED"
	// MatchAdvanceApplied: accumulated advance credit was applied to a newly
	// arrived invoice.
	MatchAdvanceApplied MatchEventKind = "ADVANCE_APPLIED"
	// MatchAdvanceAccrued: a payment (or its remainder) found no open invoice
	// and was added to the advance-credit pool.
	MatchAdvanceAccrued MatchEventKind = "ADVANCE_ACCRUED"
)

// MatchEvent is one step of the cascade, emitted in processing order.
// It replaces the progress narration of the legacy reconciliation job with
// something a caller can log, collect or ignore.
type MatchEvent struct {
	Kind        MatchEventKind
	Amount      decimal.Decimal
	InvoiceID   int     // 0 for MatchAdvanceAccrued
	DocumentRef *string // invoice document number, if any
	Closed      bool    // the invoice reached PAID on this step
}

// MatchObserver receives MatchEvents during a run. May be nil.
type MatchObserver func(MatchEvent)

// ReconcileEntries applies every payment to the supplier's purchases using
// flexible FIFO matching:
//
//   - events from both collections are processed in date order, with a
//     purchase ordered before a payment on the same date so that a same-day
//     invoice can absorb a same-day payment;
//   - the oldest invoice with an open balance always receives funds first;
//   - a payment exceeding all open invoices accrues as advance credit, and
//     accumulated advance credit is applied to the next invoice on arrival.
//
// Purchases are mutated in place: PaidAmount, OpenBalance and Status are
// reset and then updated per the rules above. Payments are read-only.
// A re-run over the same entries produces identical results.
func ReconcileEntries(purchases, payments []*LedgerEntry, observe MatchObserver) (ReconcileSummary, error) {
	summary := ReconcileSummary{
		InvoiceCount:  len(purchases),
		PaymentCount:  len(payments),
		AppliedTotal:  decimal.Zero,
		AdvanceCredit: decimal.Zero,
	}

	for _, p := range purchases {
		if p.Kind != EntryPurchase {
			return summary, fmt.Errorf("entry %d: expected %s, got %s", p.ID, EntryPurchase, p.Kind)
		}
	}
	for _, p := range payments {
		if p.Kind != EntryPayment {
			return summary, fmt.Errorf("entry %d: expected %s, got %s", p.ID, EntryPayment, p.Kind)
		}
	}

	if len(purchases) == 0 {
		// No invoices to match: all payments are implicitly advances, but
		// there is no invoice to attach them to. Reported as no action; the
		// caller flags the supplier's credit position.
		return summary, nil
	}

	// Reset derived state so the run is idempotent.
	for _, inv := range purchases {
		inv.PaidAmount = decimal.Zero
		inv.OpenBalance = inv.CreditAmount
		inv.Status = StatusPending
	}

	events := mergeEvents(purchases, payments)

	var queue []*LedgerEntry // FIFO of invoices with an open balance
	advance := decimal.Zero

	emit := func(ev MatchEvent) {
		if observe != nil {
			observe(ev)
		}
	}

	for _, entry := range events {
		if entry.Kind == EntryPurchase {
			inv := entry
			// A fresh invoice absorbs any accumulated advance credit first.
			if advance.IsPositive() && inv.OpenBalance.IsPositive() {
				take := decimal.Min(advance, inv.OpenBalance)
				inv.PaidAmount = inv.PaidAmount.Add(take)
				inv.OpenBalance = inv.CreditAmount.Sub(inv.PaidAmount)
				advance = advance.Sub(take)
				summary.AppliedTotal = summary.AppliedTotal.Add(take)

				closed, err := settle(inv)
				if err != nil {
					return summary, err
				}
				if !closed {
					queue = append(queue, inv)
				}
				emit(MatchEvent{
					Kind:        MatchAdvanceApplied,
					Amount:      take,
					InvoiceID:   inv.ID,
					DocumentRef: inv.DocumentRef,
					Closed:      closed,
				})
			} else if inv.OpenBalance.GreaterThan(Tolerance) {
				queue = append(queue, inv)
			}
			continue
		}

		// Payment: cascade over open invoices, oldest first.
		remaining := entry.DebitAmount
		if !remaining.IsPositive() {
			continue
		}

		// Invoices closed via the advance path above stay PAID but may still
		// sit at the head in some orderings; drop anything no longer open.
		for len(queue) > 0 && !isOpen(queue[0]) {
			queue = queue[1:]
		}

		for remaining.IsPositive() {
			if len(queue) == 0 {
				// Every open invoice is satisfied: the rest of this payment
				// is an advance for invoices yet to arrive.
				advance = advance.Add(remaining)
				emit(MatchEvent{Kind: MatchAdvanceAccrued, Amount: remaining})
				remaining = decimal.Zero
				break
			}

			inv := queue[0]
			take := decimal.Min(inv.OpenBalance, remaining)

			inv.PaidAmount = inv.PaidAmount.Add(take)
			inv.OpenBalance = inv.CreditAmount.Sub(inv.PaidAmount)
			remaining = remaining.Sub(take)
			summary.AppliedTotal = summary.AppliedTotal.Add(take)

			closed, err := settle(inv)
			if err != nil {
				return summary, err
			}
			if closed {
				queue = queue[1:] // fully satisfied, leaves the queue permanently
			}
			emit(MatchEvent{
				Kind:        MatchPaymentApplied,
				Amount:      take,
				InvoiceID:   inv.ID,
				DocumentRef: inv.DocumentRef,
				Closed:      closed,
			})
		}
	}

	// The pool net of re-applications is what the supplier carries forward.
	summary.AdvanceCredit = advance

	for _, inv := range purchases {
		if inv.OpenBalance.GreaterThan(Tolerance) {
			summary.OpenInvoices++
		}
		if inv.Status == StatusPartial {
			summary.PartialInvoices++
		}
	}

	return summary, nil
}

// mergeEvents builds the chronological event stream. On equal dates all
// purchases sort before all payments; this tie-break is load-bearing (a
// same-day invoice must be eligible for a same-day payment) and must not be
// simplified to date-only ordering. The sort is stable, so entries of the
// same kind and date keep their input order.
func mergeEvents(purchases, payments []*LedgerEntry) []*LedgerEntry {
	events := make([]*LedgerEntry, 0, len(purchases)+len(payments))
	events = append(events, purchases...)
	events = append(events, payments...)

	rank := func(k EntryKind) int {
		if k == EntryPurchase {
			return 0
		}
		return 1
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].EntryDate.Equal(events[j].EntryDate) {
			return events[i].EntryDate.Before(events[j].EntryDate)
		}
		return rank(events[i].Kind) < rank(events[j].Kind)
	})
	return events
}

// settle normalizes an invoice after an application: clamps a within-tolerance
// residue to zero and sets the status. A balance below -Tolerance means the
// arithmetic took more than the invoice face value, which no code path should
// allow; it is returned as an error rather than silently coerced.
func settle(inv *LedgerEntry) (closed bool, err error) {
	if inv.OpenBalance.LessThan(Tolerance.Neg()) {
		return false, fmt.Errorf("invoice %d: negative balance %s after application", inv.ID, inv.OpenBalance)
	}
	if inv.OpenBalance.LessThanOrEqual(Tolerance) {
		inv.OpenBalance = decimal.Zero
		inv.Status = StatusPaid
		return true, nil
	}
	inv.Status = StatusPartial
	return false, nil
}

// isOpen reports whether an invoice still has a balance above Tolerance.
func isOpen(inv *LedgerEntry) bool {
	return inv.OpenBalance.GreaterThan(Tolerance)
}
