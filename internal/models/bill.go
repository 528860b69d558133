package models

import "github.com/goldenleaf/goldpay/internal/money"

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	// BillOpen is the initial state: splits exist, nothing settled yet.
	BillOpen BillStatus = "OPEN"
	// BillSettled means a settlement run completed for this bill.
	// A bill transitions to SETTLED exactly once and never back.
	BillSettled BillStatus = "SETTLED"
	// BillCancelled means the bill was voided before settlement.
	BillCancelled BillStatus = "CANCELLED"
)

// Split records one member's position on a bill: how much of the total
// they owe and how much they actually contributed.
type Split struct {
	UserID string
	Email  string

	// Owed is this member's share of the bill total, in paise.
	Owed money.Paise

	// Paid is what this member contributed toward the bill, in paise.
	// In the current flows exactly one payer contributes the full total,
	// but the model allows multiple contributors.
	Paid money.Paise
}

// Net is this member's net position: positive means the member is owed
// money (creditor), negative means the member owes money (debtor).
func (s Split) Net() money.Paise {
	return s.Paid - s.Owed
}

// Bill represents a group expense split across the group's members.
// Invariant: the splits' Owed amounts sum to Total (the equal-split
// rounding remainder is folded into the payer's split at creation), and
// the Paid amounts sum to Total.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// GroupID is the group this bill belongs to.
	GroupID string

	// Title is the human-readable description (e.g., "Dinner at Leela").
	Title string

	// Total is the bill amount in paise. Always positive.
	Total money.Paise

	// CreatedBy is the user ID of the member who recorded the bill.
	CreatedBy string

	// PayerID is the user ID of the member who paid the bill.
	// Must be a group member.
	PayerID string

	// Splits holds one entry per group member, in member order.
	Splits []Split

	// Status is the lifecycle state.
	Status BillStatus

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}
