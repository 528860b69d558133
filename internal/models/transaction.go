package models

import "github.com/goldenleaf/goldpay/internal/money"

// TransactionStatus is the outcome recorded on a transfer.
type TransactionStatus string

const (
	TxnPending TransactionStatus = "PENDING"
	TxnSuccess TransactionStatus = "SUCCESS"
	TxnFailed  TransactionStatus = "FAILED"
)

// Transaction is the immutable record of a completed balance transfer.
// It is created only after the sender debit and receiver credit have been
// applied, and is never mutated afterwards.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// SenderID is the user whose balance was debited.
	SenderID string

	// ReceiverID is the user whose balance was credited.
	ReceiverID string

	// Amount is the transferred amount in paise. Always positive.
	Amount money.Paise

	// Note is the free-text label. For settlements this identifies the
	// source bill; for direct payments it doubles as the spend category.
	Note string

	// Status is the recorded outcome.
	Status TransactionStatus

	// Timestamp is the Unix timestamp of the transfer.
	Timestamp int64

	// Cashback is the cashback credited to the sender's cashback wallet
	// for this payment, in paise. Zero when no rule applied.
	Cashback money.Paise

	// CashbackRule is the identifier of the cashback rule that applied
	// ("BASE_1", "FOOD_2"), empty when none did.
	CashbackRule string
}
