package domain

import (
	"context"

	"github.com/google/uuid"
)

// AuthService validates credentials and manages sessions
type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Register(ctx context.Context, username, password, confirmation string) (*Session, error)
	CurrentUser(ctx context.Context, sessionID uuid.UUID) (*User, error)
}

// PortfolioService aggregates a user's holdings
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error)
	OwnedSymbols(ctx context.Context, userID uuid.UUID) ([]string, error)
	History(ctx context.Context, userID uuid.UUID) ([]*HistoryEntry, error)
}

// TradingService executes buy and sell orders
type TradingService interface {
	Buy(ctx context.Context, userID uuid.UUID, symbol, shares string) (*TradeResult, error)
	Sell(ctx context.Context, userID uuid.UUID, symbol, shares string) (*TradeResult, error)
}
