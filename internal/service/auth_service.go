package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/domain"
)

// passwordSymbols is the set of symbols a password must draw from
const passwordSymbols = "@$!%*#?&"

// AuthService handles credentials, registration and sessions
type AuthService struct {
	store        domain.Store
	sessions     domain.SessionStore
	startingCash decimal.Decimal
	hashCost     int
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store domain.Store,
	sessions domain.SessionStore,
	startingCash decimal.Decimal,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		sessions:     sessions,
		startingCash: startingCash,
		hashCost:     bcrypt.DefaultCost,
		logger:       logger.Named("auth"),
		now:          time.Now,
	}
}

// Login checks the credentials and opens a session for the user
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewInvalidCredentials("must provide username")
	}
	if password == "" {
		return nil, domain.NewInvalidCredentials("must provide password")
	}

	invalid := domain.NewInvalidCredentials("invalid username and/or password")

	user, err := s.store.Users().GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrMultipleUsers) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Debug("user logged in", zap.String("user_id", user.ID.String()))
	return session, nil
}

// Logout ends the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Register validates and stores a new user, then logs them in
func (s *AuthService) Register(ctx context.Context, username, password, confirmation string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("Username cannot be blank")
	}

	_, err := s.store.Users().GetByUsername(ctx, username)
	switch {
	case err == nil, errors.Is(err, domain.ErrMultipleUsers):
		return nil, domain.NewValidationError("Username already exists")
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if password == "" {
		return nil, domain.NewValidationError("Password cannot be blank")
	}
	if password != confirmation {
		return nil, domain.NewValidationError("Passwords do not match")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.NewValidationError("Password is too long")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.startingCash,
		CreatedAt:    s.now(),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.NewValidationError("Username already exists")
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// CurrentUser resolves a session to its user
func (s *AuthService) CurrentUser(ctx context.Context, sessionID uuid.UUID) (*domain.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.store.Users().GetByID(ctx, session.UserID)
}

// ValidatePassword enforces the complexity rule: only letters, digits and
// symbols from @$!%*#?&, with at least one of each.
func ValidatePassword(password string) error {
	var letter, digit, symbol bool
	for _, r := range password {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
			letter = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return domain.NewValidationError("Password may only contain letters, numbers and the symbols " + passwordSymbols)
		}
	}
	if !letter || !digit || !symbol {
		return domain.NewValidationError("Password must contain at least one letter, one number, and one symbol")
	}
	return nil
}
