// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when creating a user whose email is
	// already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInsufficientBalance is returned by Transfer when the sender's
	// balance cannot cover the amount. Nothing is written in that case.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBillSettled is returned when marking an already-settled bill.
	ErrBillSettled = errors.New("bill already settled")
)

// TransferParams describes one balance transfer. Cashback, when positive,
// is credited to the sender's cashback wallet in the same atomic unit.
type TransferParams struct {
	SenderID     string
	ReceiverID   string
	Amount       money.Paise
	Note         string
	Cashback     money.Paise
	CashbackRule string
}

// Store defines persistence for users, groups, bills and transactions.
// The abstraction keeps the service layer independent of the SQLite
// backend.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByQRCode(ctx context.Context, qrCodeID string) (*models.User, error)
	// GetUsersByEmails returns the users found, keyed by lowercase email.
	// Missing emails are simply absent from the map.
	GetUsersByEmails(ctx context.Context, emails []string) (map[string]*models.User, error)

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsByMember returns groups the email belongs to, newest first.
	ListGroupsByMember(ctx context.Context, email string) ([]*models.Group, error)

	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)
	// MarkBillSettled transitions an OPEN bill to SETTLED. Returns
	// ErrBillSettled if it already is, ErrNotFound if it does not exist.
	MarkBillSettled(ctx context.Context, billID string) error

	// Transfer atomically debits the sender, credits the receiver, credits
	// any cashback, and appends the transaction record. The sender's
	// balance is read fresh inside the transaction; if it cannot cover the
	// amount, ErrInsufficientBalance is returned and nothing changes.
	Transfer(ctx context.Context, p TransferParams) (*models.Transaction, error)

	// ListTransactionsBySender returns the sender's SUCCESS transactions
	// since the given time, oldest first.
	ListTransactionsBySender(ctx context.Context, senderID string, since time.Time) ([]*models.Transaction, error)

	Close() error
}
