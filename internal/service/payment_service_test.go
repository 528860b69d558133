package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenleaf/goldpay/internal/cashback"
	"github.com/goldenleaf/goldpay/internal/money"
)

func TestSendPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("transfers and credits cashback", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 2000_00)
		createTestUser(t, store, "recipient@example.com", 0)

		result, err := svc.Send(ctx, "sender@example.com", "recipient@example.com", 1000_00, "Swiggy order")
		require.NoError(t, err)

		// 2% food cashback on Rs 1000.
		assert.Equal(t, money.Paise(20_00), result.Cashback)
		assert.Equal(t, cashback.RuleFood, result.Rule)
		assert.Equal(t, money.Paise(1000_00), result.Sender.Balance)
		assert.Equal(t, money.Paise(20_00), result.Sender.CashbackBalance)
		assert.Equal(t, money.Paise(1000_00), result.Recipient.Balance)
		assert.Equal(t, "Swiggy order", result.Transaction.Note)
	})

	t.Run("small payment earns no cashback", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 100_00)
		createTestUser(t, store, "recipient@example.com", 0)

		result, err := svc.Send(ctx, "sender@example.com", "recipient@example.com", 50_00, "snack")
		require.NoError(t, err)
		assert.Equal(t, money.Paise(0), result.Cashback)
		assert.Equal(t, money.Paise(0), result.Sender.CashbackBalance)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 50_00)
		createTestUser(t, store, "recipient@example.com", 0)

		_, err := svc.Send(ctx, "sender@example.com", "recipient@example.com", 100_00, "")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("self payment rejected", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 100_00)

		_, err := svc.Send(ctx, "sender@example.com", "Sender@Example.com", 10_00, "")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 100_00)
		createTestUser(t, store, "recipient@example.com", 0)

		_, err := svc.Send(ctx, "sender@example.com", "recipient@example.com", 0, "")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 100_00)

		_, err := svc.Send(ctx, "sender@example.com", "ghost@example.com", 10_00, "")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}

func TestPayByQRCode(t *testing.T) {
	ctx := context.Background()

	t.Run("pays the code owner", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 500_00)
		owner := createTestUser(t, store, "owner@example.com", 0)

		result, err := svc.PayByQRCode(ctx, "sender@example.com", owner.QRCodeID, 200_00, "chai")
		require.NoError(t, err)
		assert.Equal(t, owner.ID, result.Transaction.ReceiverID)
		assert.Equal(t, money.Paise(200_00), result.Recipient.Balance)
	})

	t.Run("unknown code", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPaymentService(store)
		createTestUser(t, store, "sender@example.com", 500_00)

		_, err := svc.PayByQRCode(ctx, "sender@example.com", "nope", 10_00, "")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}
