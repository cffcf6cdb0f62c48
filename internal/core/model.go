package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind discriminates the two sides of the supplier ledger.
type EntryKind string

const (
	// EntryPurchase is a credit-side entry: an invoice owed to the supplier.
	EntryPurchase EntryKind = "PURCHASE"
	// EntryPayment is a debit-side entry: money paid to the supplier.
	EntryPayment EntryKind = "PAYMENT"
)

// PaymentStatus is the reconciliation state of a purchase entry.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
)

// LedgerEntry is one row of a supplier's ledger.
//
// CreditAmount (purchases) and DebitAmount (payments) are immutable face
// values. PaidAmount, OpenBalance and Status are derived fields owned
// exclusively by the reconciliation engine: they are reset at the start of
// every run and mutated only while the engine processes events. Payments are
// never mutated.
type LedgerEntry struct {
	ID           int
	SupplierID   int
	Kind         EntryKind
	EntryDate    time.Time
	DocumentRef  *string // invoice number, where the source file had one
	CreditAmount decimal.Decimal
	DebitAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	OpenBalance  decimal.Decimal
	Status       PaymentStatus
	CreatedAt    time.Time
}
