package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user; returns ErrUsernameTaken on a duplicate username
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves the single user with that username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// UpdateCash sets the user's cash balance
	UpdateCash(ctx context.Context, id uuid.UUID, cash decimal.Decimal) error
}

// AccountRepository defines the interface for position rows
type AccountRepository interface {
	// Append inserts a signed position row
	Append(ctx context.Context, row *PositionRow) error

	// Holdings returns net shares per symbol, only positive ones, ordered by symbol
	Holdings(ctx context.Context, userID uuid.UUID) ([]Holding, error)

	// NetShares returns the net shares held for one symbol (0 when none)
	NetShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error)
}

// HistoryRepository defines the interface for the transaction ledger
type HistoryRepository interface {
	// Append inserts a ledger entry
	Append(ctx context.Context, entry *HistoryEntry) error

	// ListByUser returns all entries of a user, most recent first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*HistoryEntry, error)
}

// Store groups the repositories and runs units of work
type Store interface {
	Users() UserRepository
	Accounts() AccountRepository
	History() HistoryRepository

	// WithinTx runs fn against a transactional view of the store. Every
	// mutation made through tx lands if fn returns nil, none otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
