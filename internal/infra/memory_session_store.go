package infra

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// MemorySessionStore keeps sessions in process memory. Used when Redis is not configured.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session for the user
func (s *MemorySessionStore) Create(_ context.Context, userID uuid.UUID) (*domain.Session, error) {
	now := s.now()
	session := domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return &session, nil
}

// Get loads a session, dropping it if it has expired
func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session
func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
