package core_test

import (
	"testing"
	"time"

	"supplier-recon/internal/core"

	"github.com/shopspring/decimal"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func purchase(t *testing.T, id int, date, amount string) *core.LedgerEntry {
	t.Helper()
	return &core.LedgerEntry{
		ID:           id,
		Kind:         core.EntryPurchase,
		EntryDate:    day(t, date),
		CreditAmount: decimal.RequireFromString(amount),
	}
}

func payment(t *testing.T, id int, date, amount string) *core.LedgerEntry {
	t.Helper()
	return &core.LedgerEntry{
		ID:          id,
		Kind:        core.EntryPayment,
		EntryDate:   day(t, date),
		DebitAmount: decimal.RequireFromString(amount),
	}
}

func wantBalance(t *testing.T, inv *core.LedgerEntry, paid, balance string, status core.PaymentStatus) {
	t.Helper()
	if inv.PaidAmount.StringFixed(2) != paid {
		t.Errorf("invoice %d: paid = %s, want %s", inv.ID, inv.PaidAmount.StringFixed(2), paid)
	}
	if inv.OpenBalance.StringFixed(2) != balance {
		t.Errorf("invoice %d: balance = %s, want %s", inv.ID, inv.OpenBalance.StringFixed(2), balance)
	}
	if inv.Status != status {
		t.Errorf("invoice %d: status = %s, want %s", inv.ID, inv.Status, status)
	}
}

func TestReconcileEntries_FIFOOrdering(t *testing.T) {
	first := purchase(t, 1, "2024-01-01", "100.00")
	second := purchase(t, 2, "2024-01-15", "50.00")
	pay := payment(t, 3, "2024-02-01", "120.00")

	sum, err := core.ReconcileEntries([]*core.LedgerEntry{first, second}, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	wantBalance(t, first, "100.00", "0.00", core.StatusPaid)
	wantBalance(t, second, "20.00", "30.00", core.StatusPartial)

	if sum.OpenInvoices != 1 || sum.PartialInvoices != 1 {
		t.Errorf("summary = (%d open, %d partial), want (1, 1)", sum.OpenInvoices, sum.PartialInvoices)
	}
	if !sum.AdvanceCredit.IsZero() {
		t.Errorf("advance credit = %s, want 0", sum.AdvanceCredit)
	}
}

func TestReconcileEntries_AdvanceAbsorption(t *testing.T) {
	pay := payment(t, 1, "2024-01-01", "80.00")
	inv := purchase(t, 2, "2024-01-10", "50.00")

	sum, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	wantBalance(t, inv, "50.00", "0.00", core.StatusPaid)
	if sum.AdvanceCredit.StringFixed(2) != "30.00" {
		t.Errorf("advance credit = %s, want 30.00", sum.AdvanceCredit.StringFixed(2))
	}
	if sum.OpenInvoices != 0 || sum.PartialInvoices != 0 {
		t.Errorf("summary = (%d open, %d partial), want (0, 0)", sum.OpenInvoices, sum.PartialInvoices)
	}
}

func TestReconcileEntries_SameDayTieBreak(t *testing.T) {
	// Invoice and payment on the same date: the invoice is processed first,
	// so the payment lands on it instead of accruing as an advance.
	inv := purchase(t, 1, "2024-03-01", "75.00")
	pay := payment(t, 2, "2024-03-01", "75.00")

	sum, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	wantBalance(t, inv, "75.00", "0.00", core.StatusPaid)
	if !sum.AdvanceCredit.IsZero() {
		t.Errorf("advance credit = %s, want 0", sum.AdvanceCredit)
	}
}

func TestReconcileEntries_NoInvoices(t *testing.T) {
	pays := []*core.LedgerEntry{
		payment(t, 1, "2024-01-01", "40.00"),
		payment(t, 2, "2024-02-01", "60.00"),
	}

	sum, err := core.ReconcileEntries(nil, pays, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	if sum.OpenInvoices != 0 || sum.PartialInvoices != 0 {
		t.Errorf("summary = (%d, %d), want (0, 0)", sum.OpenInvoices, sum.PartialInvoices)
	}
	if !sum.NoInvoices() {
		t.Error("NoInvoices() = false, want true")
	}
	// The engine does not synthesize an advance for a supplier with no
	// invoices; the payment volume stays attributable by the caller.
	if !sum.AdvanceCredit.IsZero() {
		t.Errorf("advance credit = %s, want 0", sum.AdvanceCredit)
	}
}

func TestReconcileEntries_PartialChainAcrossPayments(t *testing.T) {
	inv := purchase(t, 1, "2024-01-01", "100.00")
	pays := []*core.LedgerEntry{
		payment(t, 2, "2024-01-10", "30.00"),
		payment(t, 3, "2024-01-20", "30.00"),
		payment(t, 4, "2024-01-30", "40.00"),
	}

	_, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, pays, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, inv, "100.00", "0.00", core.StatusPaid)
}

func TestReconcileEntries_OnePaymentCascadesManyInvoices(t *testing.T) {
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-01", "10.00"),
		purchase(t, 2, "2024-01-02", "20.00"),
		purchase(t, 3, "2024-01-03", "30.00"),
	}
	pay := payment(t, 4, "2024-02-01", "45.00")

	sum, err := core.ReconcileEntries(invs, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	wantBalance(t, invs[0], "10.00", "0.00", core.StatusPaid)
	wantBalance(t, invs[1], "20.00", "0.00", core.StatusPaid)
	wantBalance(t, invs[2], "15.00", "15.00", core.StatusPartial)
	if sum.OpenInvoices != 1 || sum.PartialInvoices != 1 {
		t.Errorf("summary = (%d open, %d partial), want (1, 1)", sum.OpenInvoices, sum.PartialInvoices)
	}
}

func TestReconcileEntries_UntouchedInvoiceStaysPending(t *testing.T) {
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-01", "50.00"),
		purchase(t, 2, "2024-03-01", "50.00"),
	}
	pay := payment(t, 3, "2024-01-15", "50.00")

	_, err := core.ReconcileEntries(invs, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, invs[0], "50.00", "0.00", core.StatusPaid)
	wantBalance(t, invs[1], "0.00", "50.00", core.StatusPending)
}

func TestReconcileEntries_ResidualCentsClampToPaid(t *testing.T) {
	// 0.01 short of the face value is within tolerance: clamp to zero, PAID.
	inv := purchase(t, 1, "2024-01-01", "100.00")
	pay := payment(t, 2, "2024-01-10", "99.99")

	_, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, inv, "99.99", "0.00", core.StatusPaid)
}

func TestReconcileEntries_JustAboveToleranceStaysOpen(t *testing.T) {
	inv := purchase(t, 1, "2024-01-01", "100.00")
	pay := payment(t, 2, "2024-01-10", "99.98")

	sum, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, inv, "99.98", "0.02", core.StatusPartial)
	if sum.OpenInvoices != 1 {
		t.Errorf("open invoices = %d, want 1", sum.OpenInvoices)
	}
}

func TestReconcileEntries_ZeroAndNegativePaymentsSkipped(t *testing.T) {
	inv := purchase(t, 1, "2024-01-01", "50.00")
	pays := []*core.LedgerEntry{
		payment(t, 2, "2024-01-05", "0.00"),
		payment(t, 3, "2024-01-06", "-10.00"),
		payment(t, 4, "2024-01-07", "50.00"),
	}

	sum, err := core.ReconcileEntries([]*core.LedgerEntry{inv}, pays, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, inv, "50.00", "0.00", core.StatusPaid)
	if sum.AppliedTotal.StringFixed(2) != "50.00" {
		t.Errorf("applied total = %s, want 50.00", sum.AppliedTotal.StringFixed(2))
	}
}

func TestReconcileEntries_AdvanceThenMultipleInvoices(t *testing.T) {
	// One large early payment covers two later invoices and leaves a residue.
	pay := payment(t, 1, "2024-01-01", "100.00")
	invs := []*core.LedgerEntry{
		purchase(t, 2, "2024-01-10", "40.00"),
		purchase(t, 3, "2024-01-20", "50.00"),
	}

	sum, err := core.ReconcileEntries(invs, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	wantBalance(t, invs[0], "40.00", "0.00", core.StatusPaid)
	wantBalance(t, invs[1], "50.00", "0.00", core.StatusPaid)
	if sum.AdvanceCredit.StringFixed(2) != "10.00" {
		t.Errorf("advance credit = %s, want 10.00", sum.AdvanceCredit.StringFixed(2))
	}
}

func TestReconcileEntries_Conservation(t *testing.T) {
	// Property: Σ(payments) = AppliedTotal + AdvanceCredit, to the cent,
	// across a mix of advances, cascades and partial applications.
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-05", "123.45"),
		purchase(t, 2, "2024-01-05", "67.89"),
		purchase(t, 3, "2024-02-01", "500.00"),
		purchase(t, 4, "2024-03-15", "0.99"),
	}
	pays := []*core.LedgerEntry{
		payment(t, 5, "2024-01-01", "50.00"), // advance before any invoice
		payment(t, 6, "2024-01-05", "100.00"),
		payment(t, 7, "2024-02-10", "333.33"),
		payment(t, 8, "2024-04-01", "400.00"), // exceeds everything left
	}

	sum, err := core.ReconcileEntries(invs, pays, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	var paymentTotal, paidTotal decimal.Decimal
	for _, p := range pays {
		paymentTotal = paymentTotal.Add(p.DebitAmount)
	}
	for _, inv := range invs {
		paidTotal = paidTotal.Add(inv.PaidAmount)
		// Balance invariant: balance = credit - paid, clamped at zero.
		want := inv.CreditAmount.Sub(inv.PaidAmount)
		if want.LessThanOrEqual(core.Tolerance) {
			want = decimal.Zero
		}
		if !inv.OpenBalance.Equal(want) {
			t.Errorf("invoice %d: balance = %s, want %s", inv.ID, inv.OpenBalance, want)
		}
		if inv.OpenBalance.IsNegative() {
			t.Errorf("invoice %d: negative balance %s", inv.ID, inv.OpenBalance)
		}
	}

	if !sum.AppliedTotal.Equal(paidTotal) {
		t.Errorf("applied total = %s, paid sum = %s", sum.AppliedTotal, paidTotal)
	}
	if !paymentTotal.Equal(sum.AppliedTotal.Add(sum.AdvanceCredit)) {
		t.Errorf("conservation violated: payments %s != applied %s + advance %s",
			paymentTotal, sum.AppliedTotal, sum.AdvanceCredit)
	}
}

func TestReconcileEntries_IdempotentRerun(t *testing.T) {
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-01", "100.00"),
		purchase(t, 2, "2024-01-15", "50.00"),
		purchase(t, 3, "2024-02-20", "75.50"),
	}
	pays := []*core.LedgerEntry{
		payment(t, 4, "2024-01-10", "60.00"),
		payment(t, 5, "2024-02-01", "120.00"),
	}

	first, err := core.ReconcileEntries(invs, pays, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	type snapshot struct {
		paid, balance string
		status        core.PaymentStatus
	}
	var before []snapshot
	for _, inv := range invs {
		before = append(before, snapshot{inv.PaidAmount.String(), inv.OpenBalance.String(), inv.Status})
	}

	second, err := core.ReconcileEntries(invs, pays, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i, inv := range invs {
		after := snapshot{inv.PaidAmount.String(), inv.OpenBalance.String(), inv.Status}
		if after != before[i] {
			t.Errorf("invoice %d changed on re-run: %+v -> %+v", inv.ID, before[i], after)
		}
	}
	if first.OpenInvoices != second.OpenInvoices ||
		first.PartialInvoices != second.PartialInvoices ||
		!first.AppliedTotal.Equal(second.AppliedTotal) ||
		!first.AdvanceCredit.Equal(second.AdvanceCredit) {
		t.Errorf("summary changed on re-run: %+v -> %+v", first, second)
	}
}

func TestReconcileEntries_ObserverSeesEveryApplication(t *testing.T) {
	pay0 := payment(t, 1, "2024-01-01", "30.00")
	inv := purchase(t, 2, "2024-01-10", "100.00")
	pay1 := payment(t, 3, "2024-01-20", "90.00")

	var events []core.MatchEvent
	sum, err := core.ReconcileEntries(
		[]*core.LedgerEntry{inv},
		[]*core.LedgerEntry{pay0, pay1},
		func(ev core.MatchEvent) { events = append(events, ev) },
	)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	// advance accrued (30), advance applied (30), payment applied (70),
	// then the 20 left over accrues again.
	wantKinds := []core.MatchEventKind{
		core.MatchAdvanceAccrued,
		core.MatchAdvanceApplied,
		core.MatchPaymentApplied,
		core.MatchAdvanceAccrued,
	}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantKinds), events)
	}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Errorf("event %d: kind = %s, want %s", i, events[i].Kind, k)
		}
	}
	if !events[2].Closed {
		t.Error("final application should close the invoice")
	}

	var observed decimal.Decimal
	for _, ev := range events {
		if ev.Kind != core.MatchAdvanceAccrued {
			observed = observed.Add(ev.Amount)
		}
	}
	if !observed.Equal(sum.AppliedTotal) {
		t.Errorf("observed applications %s != applied total %s", observed, sum.AppliedTotal)
	}
}

func TestReconcileEntries_MonotonicPaidAmount(t *testing.T) {
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-01", "200.00"),
		purchase(t, 2, "2024-01-02", "100.00"),
	}
	pays := []*core.LedgerEntry{
		payment(t, 3, "2024-01-10", "50.00"),
		payment(t, 4, "2024-01-20", "50.00"),
		payment(t, 5, "2024-01-30", "150.00"),
	}

	last := map[int]decimal.Decimal{}
	_, err := core.ReconcileEntries(invs, pays, func(ev core.MatchEvent) {
		if ev.Kind == core.MatchAdvanceAccrued {
			return
		}
		if ev.Amount.IsNegative() {
			t.Errorf("negative application %s on invoice %d", ev.Amount, ev.InvoiceID)
		}
		last[ev.InvoiceID] = last[ev.InvoiceID].Add(ev.Amount)
	})
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}

	for _, inv := range invs {
		if !last[inv.ID].Equal(inv.PaidAmount) {
			t.Errorf("invoice %d: applications sum %s != paid %s", inv.ID, last[inv.ID], inv.PaidAmount)
		}
	}
}

func TestReconcileEntries_KindMismatchRejected(t *testing.T) {
	mixed := payment(t, 1, "2024-01-01", "10.00")
	if _, err := core.ReconcileEntries([]*core.LedgerEntry{mixed}, nil, nil); err == nil {
		t.Error("expected error for a payment passed as purchase, got nil")
	}

	inv := purchase(t, 2, "2024-01-01", "10.00")
	if _, err := core.ReconcileEntries(nil, []*core.LedgerEntry{inv}, nil); err == nil {
		t.Error("expected error for a purchase passed as payment, got nil")
	}
}

func TestReconcileEntries_StableOrderWithinSameDay(t *testing.T) {
	// Two invoices on the same date keep their input order in the queue.
	invs := []*core.LedgerEntry{
		purchase(t, 1, "2024-01-01", "30.00"),
		purchase(t, 2, "2024-01-01", "30.00"),
	}
	pay := payment(t, 3, "2024-01-02", "30.00")

	_, err := core.ReconcileEntries(invs, []*core.LedgerEntry{pay}, nil)
	if err != nil {
		t.Fatalf("ReconcileEntries: %v", err)
	}
	wantBalance(t, invs[0], "30.00", "0.00", core.StatusPaid)
	wantBalance(t, invs[1], "0.00", "30.00", core.StatusPending)
}
