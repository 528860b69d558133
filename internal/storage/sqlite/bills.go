package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
)

// CreateBill persists a new bill and its splits.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.BillOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, group_id, title, total, created_by, payer_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.GroupID, bill.Title, int64(bill.Total),
		bill.CreatedBy, bill.PayerID, string(bill.Status), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, sp := range bill.Splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_splits (bill_id, position, user_id, email, owed, paid)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			bill.ID, i, sp.UserID, sp.Email, int64(sp.Owed), int64(sp.Paid),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including its splits in creation order.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var total int64
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, total, created_by, payer_id, status, created_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.GroupID, &bill.Title, &total,
		&bill.CreatedBy, &bill.PayerID, &status, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Total = money.Paise(total)
	bill.Status = models.BillStatus(status)

	if bill.Splits, err = s.billSplits(ctx, billID); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBillsByGroup retrieves all bills for a group, newest first.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, title, total, created_by, payer_id, status, created_at
		 FROM bills WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill := &models.Bill{}
		var total int64
		var status string
		if err := rows.Scan(&bill.ID, &bill.GroupID, &bill.Title, &total,
			&bill.CreatedBy, &bill.PayerID, &status, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.Total = money.Paise(total)
		bill.Status = models.BillStatus(status)
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, b := range bills {
		if b.Splits, err = s.billSplits(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

// MarkBillSettled transitions an OPEN bill to SETTLED, exactly once.
func (s *SQLiteStore) MarkBillSettled(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET status = ? WHERE id = ? AND status = ?",
		string(models.BillSettled), billID, string(models.BillOpen),
	)
	if err != nil {
		return fmt.Errorf("failed to mark bill settled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settled update: %w", err)
	}
	if affected == 0 {
		// Either the bill does not exist or it is no longer OPEN.
		var status string
		err := s.db.QueryRowContext(ctx, "SELECT status FROM bills WHERE id = ?", billID).Scan(&status)
		if err == sql.ErrNoRows {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check bill status: %w", err)
		}
		return storage.ErrBillSettled
	}
	return nil
}

func (s *SQLiteStore) billSplits(ctx context.Context, billID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, email, owed, paid FROM bill_splits WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		var owed, paid int64
		if err := rows.Scan(&sp.UserID, &sp.Email, &owed, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan bill split: %w", err)
		}
		sp.Owed = money.Paise(owed)
		sp.Paid = money.Paise(paid)
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill splits: %w", err)
	}
	return splits, nil
}
