package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
)

// DashboardService aggregates a user's month-to-date spending.
type DashboardService struct {
	store storage.Store
	now   func() time.Time
}

// NewDashboardService creates a DashboardService with the given storage
// backend.
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// TrendPoint is one day's outgoing spend.
type TrendPoint struct {
	Label string
	Spent money.Paise
}

// Dashboard is the month-to-date summary for one user.
type Dashboard struct {
	Balance           money.Paise
	CashbackBalance   money.Paise
	SpentThisMonth    money.Paise
	CashbackThisMonth money.Paise
	SavedThisMonth    money.Paise
	// CategoryData is spend per category, keyed by the payment note.
	CategoryData map[string]money.Paise
	// TrendData is daily spend in chronological order.
	TrendData []TrendPoint
}

// ForUser builds the dashboard for the user with the given email,
// aggregating their successful outgoing transfers since the start of the
// current month.
func (d *DashboardService) ForUser(ctx context.Context, email string) (*Dashboard, error) {
	user, err := d.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, err
	}

	now := d.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	txns, err := d.store.ListTransactionsBySender(ctx, user.ID, startOfMonth)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Balance:         user.Balance,
		CashbackBalance: user.CashbackBalance,
		CategoryData:    make(map[string]money.Paise),
	}

	type dayTotal struct {
		day   string // YYYY-MM-DD, for ordering
		label string
		spent money.Paise
	}
	days := make(map[string]*dayTotal)

	for _, t := range txns {
		dash.SpentThisMonth += t.Amount
		dash.CashbackThisMonth += t.Cashback

		category := strings.TrimSpace(t.Note)
		if category == "" {
			category = "Other"
		}
		dash.CategoryData[category] += t.Amount

		ts := time.Unix(t.Timestamp, 0).In(now.Location())
		key := ts.Format("2006-01-02")
		if days[key] == nil {
			days[key] = &dayTotal{day: key, label: ts.Format("02 Jan")}
		}
		days[key].spent += t.Amount
	}

	ordered := make([]*dayTotal, 0, len(days))
	for _, dt := range days {
		ordered = append(ordered, dt)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].day < ordered[j].day })
	for _, dt := range ordered {
		dash.TrendData = append(dash.TrendData, TrendPoint{Label: dt.label, Spent: dt.spent})
	}

	saved := user.Balance - dash.SpentThisMonth
	if saved < 0 {
		saved = 0
	}
	dash.SavedThisMonth = saved + dash.CashbackThisMonth

	return dash, nil
}
