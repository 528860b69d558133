package settle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
)

func TestNetPositions(t *testing.T) {
	t.Run("payer nets positive, others negative", func(t *testing.T) {
		splits := []models.Split{
			{UserID: "a", Email: "a@x.com", Owed: 100_00, Paid: 300_00},
			{UserID: "b", Email: "b@x.com", Owed: 100_00},
			{UserID: "c", Email: "c@x.com", Owed: 100_00},
		}

		nets := NetPositions(splits)
		require.Len(t, nets, 3)
		assert.Equal(t, money.Paise(200_00), nets[0].Amount)
		assert.Equal(t, money.Paise(-100_00), nets[1].Amount)
		assert.Equal(t, money.Paise(-100_00), nets[2].Amount)
	})

	t.Run("repeated member accumulates", func(t *testing.T) {
		splits := []models.Split{
			{UserID: "a", Email: "a@x.com", Owed: 50_00},
			{UserID: "a", Email: "a@x.com", Owed: 25_00, Paid: 100_00},
		}

		nets := NetPositions(splits)
		require.Len(t, nets, 1)
		assert.Equal(t, money.Paise(25_00), nets[0].Amount)
	})

	t.Run("zero nets are dropped", func(t *testing.T) {
		splits := []models.Split{
			{UserID: "a", Email: "a@x.com", Owed: 100_00, Paid: 100_00},
			{UserID: "b", Email: "b@x.com", Owed: 50_00, Paid: 150_00},
			{UserID: "c", Email: "c@x.com", Owed: 100_00},
		}

		nets := NetPositions(splits)
		require.Len(t, nets, 2)
		assert.Equal(t, "b", nets[0].UserID)
		assert.Equal(t, "c", nets[1].UserID)
	})
}

func TestPlan(t *testing.T) {
	t.Run("three-way equal split", func(t *testing.T) {
		// a fronted Rs 300, everyone owes Rs 100.
		nets := []Net{
			{UserID: "a", Email: "a@x.com", Amount: 200_00},
			{UserID: "b", Email: "b@x.com", Amount: -100_00},
			{UserID: "c", Email: "c@x.com", Amount: -100_00},
		}

		plan := Plan(nets)
		require.Len(t, plan, 2)
		assert.Equal(t, Transfer{FromUserID: "b", FromEmail: "b@x.com", ToUserID: "a", ToEmail: "a@x.com", Amount: 100_00}, plan[0])
		assert.Equal(t, Transfer{FromUserID: "c", FromEmail: "c@x.com", ToUserID: "a", ToEmail: "a@x.com", Amount: 100_00}, plan[1])
	})

	t.Run("largest debtor pays largest creditor first", func(t *testing.T) {
		nets := []Net{
			{UserID: "a", Amount: 50_00},
			{UserID: "b", Amount: 150_00},
			{UserID: "c", Amount: -180_00},
			{UserID: "d", Amount: -20_00},
		}

		plan := Plan(nets)
		require.Len(t, plan, 3)

		assert.Equal(t, "c", plan[0].FromUserID)
		assert.Equal(t, "b", plan[0].ToUserID)
		assert.Equal(t, money.Paise(150_00), plan[0].Amount)

		assert.Equal(t, "c", plan[1].FromUserID)
		assert.Equal(t, "a", plan[1].ToUserID)
		assert.Equal(t, money.Paise(30_00), plan[1].Amount)

		assert.Equal(t, "d", plan[2].FromUserID)
		assert.Equal(t, "a", plan[2].ToUserID)
		assert.Equal(t, money.Paise(20_00), plan[2].Amount)
	})

	t.Run("plan zeroes every position", func(t *testing.T) {
		nets := []Net{
			{UserID: "a", Amount: 123_45},
			{UserID: "b", Amount: 76_55},
			{UserID: "c", Amount: -50_00},
			{UserID: "d", Amount: -150_00},
		}

		plan := Plan(nets)

		moved := make(map[string]money.Paise)
		for _, tr := range plan {
			moved[tr.FromUserID] -= tr.Amount
			moved[tr.ToUserID] += tr.Amount
		}
		for _, n := range nets {
			assert.Equal(t, -n.Amount, moved[n.UserID], "user %s", n.UserID)
		}
	})

	t.Run("deterministic for equal amounts", func(t *testing.T) {
		nets := []Net{
			{UserID: "a", Amount: 100_00},
			{UserID: "b", Amount: 100_00},
			{UserID: "c", Amount: -100_00},
			{UserID: "d", Amount: -100_00},
		}

		first := Plan(nets)
		for range 10 {
			assert.Equal(t, first, Plan(nets))
		}
		// Stable sort keeps input order for ties.
		assert.Equal(t, "c", first[0].FromUserID)
		assert.Equal(t, "a", first[0].ToUserID)
	})

	t.Run("empty nets yield empty plan", func(t *testing.T) {
		assert.Empty(t, Plan(nil))
		assert.Empty(t, Plan([]Net{}))
	})
}
