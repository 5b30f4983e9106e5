package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionRow is one signed entry of the account table. Buys are positive,
// sells negative; the net holding of a symbol is the sum of its rows.
type PositionRow struct {
	ID       int64           `json:"id"`
	UserID   uuid.UUID       `json:"user_id"`
	Symbol   string          `json:"symbol"`
	Shares   int64           `json:"shares"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"date"`
	Username string          `json:"name"`
}

// Holding is the net number of shares a user owns for one symbol
type Holding struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}
