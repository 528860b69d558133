package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
	"github.com/goldenleaf/goldpay/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, email string, balance money.Paise) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
		Balance:      balance,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createTestGroup(t *testing.T, svc *SplitService, emails ...string) *models.Group {
	t.Helper()
	group, err := svc.CreateGroup(context.Background(), "Trip", emails, emails[0])
	require.NoError(t, err)
	return group
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes members including the creator", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		alice := createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 0)

		group, err := svc.CreateGroup(ctx, "Trip",
			[]string{"alice@example.com", "Bob@Example.com", "bob@example.com"},
			"alice@example.com")
		require.NoError(t, err)

		require.Len(t, group.Members, 2)
		assert.Equal(t, "alice@example.com", group.Members[0].Email)
		assert.Equal(t, "bob@example.com", group.Members[1].Email)
		assert.Equal(t, alice.ID, group.CreatedBy)
	})

	t.Run("unregistered member rejected", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)

		_, err := svc.CreateGroup(ctx, "Trip",
			[]string{"ghost@example.com"}, "alice@example.com")

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
		assert.Contains(t, svcErr.Message, "ghost@example.com")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc := NewSplitService(newTestStore(t))
		_, err := svc.CreateGroup(ctx, "", []string{"a@x.com"}, "a@x.com")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})
}

func TestCreateBill(t *testing.T) {
	ctx := context.Background()

	t.Run("equal split folds remainder into payer", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 0)
		createTestUser(t, store, "carol@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com", "carol@example.com")

		bill, err := svc.CreateBill(ctx, group.ID, "Dinner", 100_00,
			"alice@example.com", "equal", nil, "alice@example.com")
		require.NoError(t, err)

		require.Len(t, bill.Splits, 3)
		var owedSum money.Paise
		for _, sp := range bill.Splits {
			owedSum += sp.Owed
		}
		assert.Equal(t, money.Paise(100_00), owedSum)

		// 100.00 / 3 = 33.33 each; the extra paisa lands on the payer.
		assert.Equal(t, money.Paise(33_34), bill.Splits[0].Owed)
		assert.Equal(t, money.Paise(100_00), bill.Splits[0].Paid)
		assert.Equal(t, money.Paise(33_33), bill.Splits[1].Owed)
		assert.Equal(t, money.Paise(0), bill.Splits[1].Paid)
		assert.Equal(t, models.BillOpen, bill.Status)
	})

	t.Run("custom split must sum to the total", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com")

		_, err := svc.CreateBill(ctx, group.ID, "Dinner", 100_00,
			"alice@example.com", "custom",
			[]CustomSplit{
				{Email: "alice@example.com", Amount: 30_00},
				{Email: "bob@example.com", Amount: 50_00},
			}, "alice@example.com")

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("custom split accepts one paisa of drift", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com")

		bill, err := svc.CreateBill(ctx, group.ID, "Dinner", 100_00,
			"alice@example.com", "custom",
			[]CustomSplit{
				{Email: "alice@example.com", Amount: 50_00},
				{Email: "bob@example.com", Amount: 49_99},
			}, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, money.Paise(100_00), bill.Splits[0].Paid)
	})

	t.Run("custom split aggregates repeated members", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com")

		bill, err := svc.CreateBill(ctx, group.ID, "Dinner", 100_00,
			"alice@example.com", "custom",
			[]CustomSplit{
				{Email: "bob@example.com", Amount: 40_00},
				{Email: "bob@example.com", Amount: 30_00},
				{Email: "alice@example.com", Amount: 30_00},
			}, "alice@example.com")
		require.NoError(t, err)

		require.Len(t, bill.Splits, 2)
		assert.Equal(t, "bob@example.com", bill.Splits[0].Email)
		assert.Equal(t, money.Paise(70_00), bill.Splits[0].Owed)
		assert.Equal(t, "alice@example.com", bill.Splits[1].Email)
		assert.Equal(t, money.Paise(30_00), bill.Splits[1].Owed)
		assert.Equal(t, money.Paise(100_00), bill.Splits[1].Paid)

		// The stored bill reads back the aggregated splits.
		stored, err := store.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		require.Len(t, stored.Splits, 2)
		assert.Equal(t, money.Paise(70_00), stored.Splits[0].Owed)
	})

	t.Run("custom split rejects non-members", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "outsider@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com")

		_, err := svc.CreateBill(ctx, group.ID, "Dinner", 50_00,
			"alice@example.com", "custom",
			[]CustomSplit{{Email: "outsider@example.com", Amount: 50_00}},
			"alice@example.com")

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("payer must be a member", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "outsider@example.com", 0)
		group := createTestGroup(t, svc, "alice@example.com")

		_, err := svc.CreateBill(ctx, group.ID, "Dinner", 50_00,
			"outsider@example.com", "equal", nil, "alice@example.com")

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})

	t.Run("unknown group", func(t *testing.T) {
		svc := NewSplitService(newTestStore(t))
		_, err := svc.CreateBill(ctx, "missing", "Dinner", 50_00,
			"alice@example.com", "equal", nil, "alice@example.com")
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (storage.Store, *SplitService, *models.Bill, *models.User, *models.User, *models.User) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		alice := createTestUser(t, store, "alice@example.com", 100_00)
		bob := createTestUser(t, store, "bob@example.com", 500_00)
		carol := createTestUser(t, store, "carol@example.com", 500_00)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com", "carol@example.com")

		// Alice fronted Rs 300; Bob and Carol each owe her Rs 100.
		bill, err := svc.CreateBill(ctx, group.ID, "Dinner", 300_00,
			"alice@example.com", "equal", nil, "alice@example.com")
		require.NoError(t, err)
		return store, svc, bill, alice, bob, carol
	}

	t.Run("preview is pure and repeatable", func(t *testing.T) {
		store, svc, bill, alice, bob, _ := setup(t)

		first, err := svc.Settle(ctx, bill.ID, false)
		require.NoError(t, err)
		assert.False(t, first.Executed)
		require.Len(t, first.Plan, 2)
		assert.Equal(t, alice.ID, first.Plan[0].ToUserID)
		assert.Equal(t, money.Paise(100_00), first.Plan[0].Amount)

		second, err := svc.Settle(ctx, bill.ID, false)
		require.NoError(t, err)
		assert.Equal(t, first.Plan, second.Plan)

		// Nothing moved.
		bobNow, err := store.GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Paise(500_00), bobNow.Balance)

		stored, err := store.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BillOpen, stored.Status)
	})

	t.Run("execute moves balances and settles the bill", func(t *testing.T) {
		store, svc, bill, alice, bob, carol := setup(t)

		outcome, err := svc.Settle(ctx, bill.ID, true)
		require.NoError(t, err)
		assert.True(t, outcome.Executed)
		assert.Equal(t, 2, outcome.Completed)
		assert.Equal(t, 0, outcome.Skipped)

		aliceNow, _ := store.GetUserByID(ctx, alice.ID)
		bobNow, _ := store.GetUserByID(ctx, bob.ID)
		carolNow, _ := store.GetUserByID(ctx, carol.ID)
		assert.Equal(t, money.Paise(300_00), aliceNow.Balance)
		assert.Equal(t, money.Paise(400_00), bobNow.Balance)
		assert.Equal(t, money.Paise(400_00), carolNow.Balance)

		stored, err := store.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BillSettled, stored.Status)
	})

	t.Run("settling twice is rejected", func(t *testing.T) {
		_, svc, bill, _, _, _ := setup(t)

		_, err := svc.Settle(ctx, bill.ID, true)
		require.NoError(t, err)

		_, err = svc.Settle(ctx, bill.ID, true)
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("broke debtor is skipped, bill still settles", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewSplitService(store)
		alice := createTestUser(t, store, "alice@example.com", 0)
		createTestUser(t, store, "bob@example.com", 500_00)
		createTestUser(t, store, "broke@example.com", 10_00)
		group := createTestGroup(t, svc, "alice@example.com", "bob@example.com", "broke@example.com")

		bill, err := svc.CreateBill(ctx, group.ID, "Dinner", 300_00,
			"alice@example.com", "equal", nil, "alice@example.com")
		require.NoError(t, err)

		outcome, err := svc.Settle(ctx, bill.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Completed)
		assert.Equal(t, 1, outcome.Skipped)

		// Bob paid his Rs 100 share; the broke member's leg was skipped.
		aliceNow, _ := store.GetUserByID(ctx, alice.ID)
		assert.Equal(t, money.Paise(100_00), aliceNow.Balance)

		stored, err := store.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BillSettled, stored.Status)
	})

	t.Run("unknown bill", func(t *testing.T) {
		svc := NewSplitService(newTestStore(t))
		_, err := svc.Settle(ctx, "missing", false)
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}

func TestMyGroups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewSplitService(store)
	createTestUser(t, store, "alice@example.com", 0)
	createTestUser(t, store, "bob@example.com", 0)
	group := createTestGroup(t, svc, "alice@example.com", "bob@example.com")

	groups, err := svc.MyGroups(ctx, "Bob@Example.com")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	_, err = svc.MyGroups(ctx, "")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
}
