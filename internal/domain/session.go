package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque browser token to a logged-in user
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore is the server-side session backend
type SessionStore interface {
	// Create starts a new session for the user
	Create(ctx context.Context, userID uuid.UUID) (*Session, error)

	// Get returns ErrSessionNotFound for unknown or expired sessions
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Delete removes the session; deleting an unknown session is not an error
	Delete(ctx context.Context, id uuid.UUID) error
}
