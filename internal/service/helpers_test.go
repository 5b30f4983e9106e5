package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/domain"
	"papertrade/internal/infra"
	"papertrade/internal/repository/memory"
)

// stubQuotes is a QuoteProvider backed by a price table
type stubQuotes map[string]string

func (q stubQuotes) Lookup(_ context.Context, symbol string) (*domain.Quote, error) {
	price, ok := q[symbol]
	if !ok {
		return nil, domain.NewQuoteUnavailable("Invalid symbol")
	}
	return &domain.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: decimal.RequireFromString(price)}, nil
}

func newTestAuth(t *testing.T) (*AuthService, *memory.Store, *infra.MemorySessionStore) {
	t.Helper()
	store := memory.NewStore()
	sessions := infra.NewMemorySessionStore(time24h)
	auth := NewAuthService(store, sessions, decimal.NewFromInt(10000), zap.NewNop())
	auth.hashCost = bcrypt.MinCost
	return auth, store, sessions
}
