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

// Transfer applies one balance transfer as a single database transaction:
// guarded sender debit, receiver credit, optional cashback credit, and the
// immutable transaction record. The debit's WHERE clause re-reads the
// sender's balance at commit time, so concurrent transfers touching the
// same user serialize on the database and can never drive a balance
// negative.
func (s *SQLiteStore) Transfer(ctx context.Context, p storage.TransferParams) (*models.Transaction, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %s", p.Amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?",
		int64(p.Amount), p.SenderID, int64(p.Amount),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to check debit: %w", err)
	} else if n == 0 {
		// Distinguish a missing sender from a short balance.
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", p.SenderID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check sender: %w", err)
		}
		return nil, storage.ErrInsufficientBalance
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE users SET balance = balance + ? WHERE id = ?",
		int64(p.Amount), p.ReceiverID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit receiver: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to check credit: %w", err)
	} else if n == 0 {
		return nil, storage.ErrNotFound
	}

	if p.Cashback > 0 {
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET cashback_balance = cashback_balance + ? WHERE id = ?",
			int64(p.Cashback), p.SenderID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to credit cashback: %w", err)
		}
	}

	txn := &models.Transaction{
		ID:           uuid.New().String(),
		SenderID:     p.SenderID,
		ReceiverID:   p.ReceiverID,
		Amount:       p.Amount,
		Note:         p.Note,
		Status:       models.TxnSuccess,
		Timestamp:    time.Now().Unix(),
		Cashback:     p.Cashback,
		CashbackRule: p.CashbackRule,
	}

	var rule any
	if txn.CashbackRule != "" {
		rule = txn.CashbackRule
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, sender_id, receiver_id, amount, note, status, timestamp, cashback, cashback_rule)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.SenderID, txn.ReceiverID, int64(txn.Amount), txn.Note,
		string(txn.Status), txn.Timestamp, int64(txn.Cashback), rule,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return txn, nil
}

// ListTransactionsBySender returns the sender's SUCCESS transactions since
// the given time, oldest first.
func (s *SQLiteStore) ListTransactionsBySender(ctx context.Context, senderID string, since time.Time) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, amount, note, status, timestamp, cashback, cashback_rule
		 FROM transactions
		 WHERE sender_id = ? AND timestamp >= ? AND status = ?
		 ORDER BY timestamp`,
		senderID, since.Unix(), string(models.TxnSuccess),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		var amount, cashback int64
		var status string
		var note, rule sql.NullString
		if err := rows.Scan(&txn.ID, &txn.SenderID, &txn.ReceiverID, &amount,
			&note, &status, &txn.Timestamp, &cashback, &rule); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Amount = money.Paise(amount)
		txn.Cashback = money.Paise(cashback)
		txn.Status = models.TransactionStatus(status)
		txn.Note = note.String
		txn.CashbackRule = rule.String
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
