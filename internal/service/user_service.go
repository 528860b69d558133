package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/goldenleaf/goldpay/internal/auth"
	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/storage"
)

// UserService handles registration, login and profile lookups.
type UserService struct {
	store storage.Store
	jwt   *auth.JWTManager
}

// NewUserService creates a UserService with the given storage backend and
// token manager.
func NewUserService(store storage.Store, jwt *auth.JWTManager) *UserService {
	return &UserService{store: store, jwt: jwt}
}

// Session is the result of a successful signup or login.
type Session struct {
	Token string
	User  *models.User
}

// Signup registers a new account. New users start with a random demo
// balance between Rs 1 and Rs 100000, as a sandbox stand-in for a funding
// flow.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if len(name) < 2 {
		return nil, BadRequest("name must be at least 2 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, BadRequest("invalid email")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, BadRequest(err.Error())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Balance:      money.Paise(int64(1+rand.IntN(100000)) * 100),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, Conflict("email already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &Session{Token: token, User: user}, nil
}

// Login authenticates an existing account.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, Unauthorized("invalid email or password")
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail returns the user with the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// GetByQRCode returns the user owning the given payment QR code.
func (s *UserService) GetByQRCode(ctx context.Context, qrCodeID string) (*models.User, error) {
	user, err := s.store.GetUserByQRCode(ctx, qrCodeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFound("receiver not found")
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
