package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
)

const userColumns = `id, email, display_name, password_hash, balance, cashback_balance,
	tap_link_id, qr_code_id, finance_score, created_at`

// CreateUser inserts a new user. ID, tap link and QR code are generated
// when unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if user.TapLinkID == "" {
		user.TapLinkID = "@" + strings.SplitN(user.Email, "@", 2)[0] + ".goldpay"
	}
	generatedQR := user.QRCodeID == ""
	if generatedQR {
		// Short payment code, same shape as the tail of the user ID.
		user.QRCodeID = shortCode(user.ID)
	}
	if user.FinanceScore == 0 {
		user.FinanceScore = 700
	}

	// The short code can collide with an existing user's. Roll a fresh one
	// and retry; only codes this method generated are replaced.
	for attempt := 0; ; attempt++ {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Name, user.PasswordHash,
			int64(user.Balance), int64(user.CashbackBalance),
			user.TapLinkID, user.QRCodeID, user.FinanceScore, user.CreatedAt,
		)
		if err == nil {
			return nil
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return storage.ErrDuplicateEmail
		}
		if generatedQR && attempt < 3 &&
			strings.Contains(err.Error(), "UNIQUE constraint failed: users.qr_code_id") {
			user.QRCodeID = shortCode(uuid.New().String())
			continue
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
}

func shortCode(id string) string {
	return strings.ReplaceAll(id, "-", "")[:6]
}

// GetUserByEmail retrieves a user by their (lowercase) email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByQRCode retrieves a user by their QR payment code.
func (s *SQLiteStore) GetUserByQRCode(ctx context.Context, qrCodeID string) (*models.User, error) {
	return s.getUser(ctx, "qr_code_id = ?", qrCodeID)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUsersByEmails returns the users found, keyed by lowercase email.
func (s *SQLiteStore) GetUsersByEmails(ctx context.Context, emails []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(emails))
	if len(emails) == 0 {
		return users, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(emails)), ", ")
	args := make([]any, len(emails))
	for i, e := range emails {
		args[i] = strings.ToLower(strings.TrimSpace(e))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.Email] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var balance, cashback int64
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&balance, &cashback,
		&user.TapLinkID, &user.QRCodeID, &user.FinanceScore, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Balance = money.Paise(balance)
	user.CashbackBalance = money.Paise(cashback)
	return user, nil
}
