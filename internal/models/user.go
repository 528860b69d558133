package models

import "github.com/goldenleaf/goldpay/internal/money"

// User represents a registered account with a spendable balance and a
// separate cashback wallet.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, stored lowercase).
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Balance is the spendable balance in paise. Never negative: every
	// debit is guarded by a balance precondition, not clamped after the
	// fact.
	Balance money.Paise

	// CashbackBalance is the cashback wallet in paise. Credited only by
	// the cashback engine, never spendable.
	CashbackBalance money.Paise

	// TapLinkID is the human-readable payment handle,
	// e.g. "@alice.goldpay".
	TapLinkID string

	// QRCodeID is the short code embedded in the user's payment QR link.
	QRCodeID string

	// FinanceScore is a CIBIL-style score out of 900.
	FinanceScore int

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
