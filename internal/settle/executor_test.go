package settle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenleaf/goldpay/internal/money"
)

type ledgerCall struct {
	fromID string
	toID   string
	amount money.Paise
}

// fakeLedger records transfers and fails the keyed senders.
type fakeLedger struct {
	calls []ledgerCall
	fail  map[string]error
}

func (l *fakeLedger) Transfer(_ context.Context, fromID, toID string, amount money.Paise, _ string) error {
	l.calls = append(l.calls, ledgerCall{fromID: fromID, toID: toID, amount: amount})
	return l.fail[fromID]
}

func TestExecutor(t *testing.T) {
	plan := []Transfer{
		{FromUserID: "b", FromEmail: "b@x.com", ToUserID: "a", ToEmail: "a@x.com", Amount: 100_00},
		{FromUserID: "c", FromEmail: "c@x.com", ToUserID: "a", ToEmail: "a@x.com", Amount: 50_00},
	}

	t.Run("all transfers complete", func(t *testing.T) {
		ledger := &fakeLedger{}
		res, err := NewExecutor(ledger).Execute(context.Background(), plan, "note")
		require.NoError(t, err)
		assert.Equal(t, Result{Completed: 2}, res)
		require.Len(t, ledger.calls, 2)
		assert.Equal(t, ledgerCall{fromID: "b", toID: "a", amount: 100_00}, ledger.calls[0])
	})

	t.Run("insufficient funds skips and continues", func(t *testing.T) {
		ledger := &fakeLedger{fail: map[string]error{"b": ErrInsufficientFunds}}
		res, err := NewExecutor(ledger).Execute(context.Background(), plan, "note")
		require.NoError(t, err)
		assert.Equal(t, Result{Completed: 1, Skipped: 1}, res)
		assert.Len(t, ledger.calls, 2)
	})

	t.Run("other ledger error aborts the batch", func(t *testing.T) {
		boom := errors.New("disk on fire")
		ledger := &fakeLedger{fail: map[string]error{"b": boom}}
		res, err := NewExecutor(ledger).Execute(context.Background(), plan, "note")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, Result{}, res)
		assert.Len(t, ledger.calls, 1)
	})

	t.Run("empty plan", func(t *testing.T) {
		res, err := NewExecutor(&fakeLedger{}).Execute(context.Background(), nil, "note")
		require.NoError(t, err)
		assert.Equal(t, Result{}, res)
	})
}
