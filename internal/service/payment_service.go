package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goldenleaf/goldpay/internal/cashback"
	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
)

// PaymentService executes direct peer-to-peer payments. Every payment
// runs through the cashback engine; the credit lands in the sender's
// cashback wallet within the same atomic transfer.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a PaymentService with the given storage
// backend.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// PaymentResult describes a completed direct payment.
type PaymentResult struct {
	Transaction *models.Transaction
	Cashback    money.Paise
	Rule        cashback.Rule
	Sender      *models.User
	Recipient   *models.User
}

// Send transfers amount from sender to recipient, both identified by
// email. Fails with 404 for unknown parties and 400 for a short balance;
// nothing is written on failure.
func (p *PaymentService) Send(ctx context.Context, senderEmail, recipientEmail string, amount money.Paise, note string) (*PaymentResult, error) {
	sender, err := p.userByEmail(ctx, senderEmail, "sender not found")
	if err != nil {
		return nil, err
	}
	recipient, err := p.userByEmail(ctx, recipientEmail, "recipient not found")
	if err != nil {
		return nil, err
	}
	return p.pay(ctx, sender, recipient, amount, note)
}

// PayByQRCode transfers amount from sender to the user owning the scanned
// QR code.
func (p *PaymentService) PayByQRCode(ctx context.Context, senderEmail, qrCodeID string, amount money.Paise, note string) (*PaymentResult, error) {
	sender, err := p.userByEmail(ctx, senderEmail, "sender not found")
	if err != nil {
		return nil, err
	}
	recipient, err := p.store.GetUserByQRCode(ctx, qrCodeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("recipient not found")
		}
		return nil, err
	}
	return p.pay(ctx, sender, recipient, amount, note)
}

func (p *PaymentService) pay(ctx context.Context, sender, recipient *models.User, amount money.Paise, note string) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, BadRequest("amount must be positive")
	}
	if sender.ID == recipient.ID {
		return nil, BadRequest("cannot pay yourself")
	}

	cb, rule := cashback.Evaluate(amount, note)

	txn, err := p.store.Transfer(ctx, storage.TransferParams{
		SenderID:     sender.ID,
		ReceiverID:   recipient.ID,
		Amount:       amount,
		Note:         note,
		Cashback:     cb,
		CashbackRule: string(rule),
	})
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			return nil, BadRequest("insufficient balance")
		}
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	// Fresh balances for the response.
	sender, err = p.store.GetUserByID(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	recipient, err = p.store.GetUserByID(ctx, recipient.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("payment sent",
		"from", sender.Email,
		"to", recipient.Email,
		"amount", amount.String(),
		"cashback", cb.String(),
	)

	return &PaymentResult{
		Transaction: txn,
		Cashback:    cb,
		Rule:        rule,
		Sender:      sender,
		Recipient:   recipient,
	}, nil
}

func (p *PaymentService) userByEmail(ctx context.Context, email, missing string) (*models.User, error) {
	user, err := p.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound(missing)
		}
		return nil, err
	}
	return user, nil
}
