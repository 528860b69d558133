package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/settle"
	"github.com/goldenleaf/goldpay/internal/storage"
)

// customSplitTolerance is how far custom splits may drift from the bill
// total before the request is rejected (one paisa of rounding slack).
const customSplitTolerance = money.Paise(1)

// SplitService manages groups, bills and bill settlement.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// MyGroups returns the groups the email belongs to, newest first.
func (s *SplitService) MyGroups(ctx context.Context, email string) ([]*models.Group, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, BadRequest("email is required")
	}
	return s.store.ListGroupsByMember(ctx, email)
}

// CreateGroup creates a group from registered member emails. Every email,
// including the creator's, must belong to an existing user.
func (s *SplitService) CreateGroup(ctx context.Context, name string, memberEmails []string, createdByEmail string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	createdByEmail = normalizeEmail(createdByEmail)
	if name == "" || len(memberEmails) == 0 || createdByEmail == "" {
		return nil, BadRequest("name, memberEmails and createdByEmail are required")
	}

	emails := make([]string, 0, len(memberEmails)+1)
	seen := make(map[string]bool)
	for _, e := range append(append([]string{}, memberEmails...), createdByEmail) {
		e = normalizeEmail(e)
		if e != "" && !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}

	users, err := s.store.GetUsersByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, e := range emails {
		if users[e] == nil {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		return nil, NotFound("some users not registered: " + strings.Join(missing, ", "))
	}

	members := make([]models.Member, len(emails))
	for i, e := range emails {
		u := users[e]
		members[i] = models.Member{UserID: u.ID, Email: u.Email, Name: u.Name}
	}

	group := &models.Group{
		Name:      name,
		Members:   members,
		CreatedBy: users[createdByEmail].ID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("group created", "group_id", group.ID, "members", len(members))
	return group, nil
}

// CustomSplit is one caller-supplied share for a custom-split bill.
type CustomSplit struct {
	Email  string
	Amount money.Paise
}

// CreateBill records a bill against a group and computes its splits.
//
// For an equal split each member owes round(total/members, 2); the
// rounding remainder is folded into the payer's owed amount so the owed
// column sums to the total exactly. For a custom split the caller names
// one amount per member; non-members are rejected and the amounts must
// sum to the total within one paisa.
func (s *SplitService) CreateBill(ctx context.Context, groupID, title string, total money.Paise, payerEmail, splitType string, customSplits []CustomSplit, createdByEmail string) (*models.Bill, error) {
	title = strings.TrimSpace(title)
	payerEmail = normalizeEmail(payerEmail)
	if groupID == "" || title == "" || payerEmail == "" {
		return nil, BadRequest("groupId, title and payerEmail are required")
	}
	if total <= 0 {
		return nil, BadRequest("totalAmount must be positive")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("group not found")
		}
		return nil, err
	}

	payer := group.MemberByEmail(payerEmail)
	if payer == nil {
		return nil, NotFound("payer is not a member of this group")
	}

	var splits []models.Split
	switch splitType {
	case "", "equal":
		splits, err = equalSplits(group, total, payer)
	case "custom":
		splits, err = customSplitsFor(group, total, customSplits, payerEmail)
	default:
		err = BadRequest("splitType must be \"equal\" or \"custom\"")
	}
	if err != nil {
		return nil, err
	}

	createdBy := payer.UserID
	if m := group.MemberByEmail(normalizeEmail(createdByEmail)); m != nil {
		createdBy = m.UserID
	}

	bill := &models.Bill{
		GroupID:   groupID,
		Title:     title,
		Total:     total,
		CreatedBy: createdBy,
		PayerID:   payer.UserID,
		Splits:    splits,
		Status:    models.BillOpen,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	slog.Info("bill created",
		"bill_id", bill.ID,
		"group_id", groupID,
		"total", total.String(),
		"split_type", splitType,
	)
	return bill, nil
}

func equalSplits(group *models.Group, total money.Paise, payer *models.Member) ([]models.Split, error) {
	share, remainder, err := money.SplitEqually(total, len(group.Members))
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	splits := make([]models.Split, len(group.Members))
	for i, m := range group.Members {
		splits[i] = models.Split{UserID: m.UserID, Email: m.Email, Owed: share}
		if m.UserID == payer.UserID {
			// The payer absorbs the rounding remainder and fronted the
			// whole bill.
			splits[i].Owed += remainder
			splits[i].Paid = total
		}
	}
	return splits, nil
}

func customSplitsFor(group *models.Group, total money.Paise, customSplits []CustomSplit, payerEmail string) ([]models.Split, error) {
	if len(customSplits) == 0 {
		return nil, BadRequest("customSplits are required for a custom split")
	}

	// A member may appear more than once; their amounts accumulate into a
	// single split, the same way settlement nets accumulate.
	index := make(map[string]int, len(customSplits))
	var sum money.Paise
	splits := make([]models.Split, 0, len(customSplits))
	for _, c := range customSplits {
		email := normalizeEmail(c.Email)
		m := group.MemberByEmail(email)
		if m == nil {
			return nil, BadRequest("custom splits include non-member: " + email)
		}
		if c.Amount < 0 {
			return nil, BadRequest("split amounts cannot be negative")
		}
		sum += c.Amount

		if i, ok := index[m.UserID]; ok {
			splits[i].Owed += c.Amount
			continue
		}
		index[m.UserID] = len(splits)
		sp := models.Split{UserID: m.UserID, Email: m.Email, Owed: c.Amount}
		if email == payerEmail {
			sp.Paid = total
		}
		splits = append(splits, sp)
	}

	if diff := (sum - total).Abs(); diff > customSplitTolerance {
		return nil, BadRequest("custom splits do not sum to totalAmount")
	}
	return splits, nil
}

// GroupBills returns the group's bills, newest first.
func (s *SplitService) GroupBills(ctx context.Context, groupID string) ([]*models.Bill, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("group not found")
		}
		return nil, err
	}
	return s.store.ListBillsByGroup(ctx, groupID)
}

// SettlementOutcome is the result of a settle call, in preview or execute
// mode.
type SettlementOutcome struct {
	Plan      []settle.Transfer
	Executed  bool
	Completed int
	Skipped   int
}

// Settle computes the settlement plan for a bill and optionally executes
// it.
//
// Preview (execute=false) is pure and repeatable: the plan is derived only
// from the stored splits, so the same bill yields the same plan until its
// splits or status change.
//
// Execute applies the plan in order. Each transfer is one atomic ledger
// operation against live balances; a transfer the sender cannot cover is
// skipped and the batch continues. The bill is marked SETTLED after the
// batch even if transfers were skipped — settlement is attempted at most
// once and never retried automatically.
func (s *SplitService) Settle(ctx context.Context, billID string, execute bool) (*SettlementOutcome, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("bill not found")
		}
		return nil, err
	}
	if bill.Status == models.BillSettled {
		return nil, BadRequest("bill already settled")
	}

	plan := settle.Plan(settle.NetPositions(bill.Splits))
	outcome := &SettlementOutcome{Plan: plan}
	if !execute {
		return outcome, nil
	}

	executor := settle.NewExecutor(&storeLedger{store: s.store})
	res, err := executor.Execute(ctx, plan, "Settlement for bill "+bill.ID)
	if err != nil {
		// The ledger refused mid-batch; the bill stays OPEN so the failure
		// is loud and visible.
		return nil, fmt.Errorf("settlement for bill %s aborted: %w", bill.ID, err)
	}

	if err := s.store.MarkBillSettled(ctx, billID); err != nil {
		return nil, fmt.Errorf("failed to mark bill settled: %w", err)
	}

	outcome.Executed = true
	outcome.Completed = res.Completed
	outcome.Skipped = res.Skipped

	slog.Info("bill settled",
		"bill_id", bill.ID,
		"transfers", len(plan),
		"completed", res.Completed,
		"skipped", res.Skipped,
	)
	return outcome, nil
}

// storeLedger adapts storage.Store to the settle.Ledger interface.
type storeLedger struct {
	store storage.Store
}

func (l *storeLedger) Transfer(ctx context.Context, fromID, toID string, amount money.Paise, note string) error {
	_, err := l.store.Transfer(ctx, storage.TransferParams{
		SenderID:   fromID,
		ReceiverID: toID,
		Amount:     amount,
		Note:       note,
	})
	if errors.Is(err, storage.ErrInsufficientBalance) {
		return settle.ErrInsufficientFunds
	}
	return err
}
