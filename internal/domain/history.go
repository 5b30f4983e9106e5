package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of an executed trade
type TransactionType string

// TransactionType constants
const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// HistoryEntry is a write-once ledger record of an executed trade.
// Shares is always positive; the direction is carried by Type.
type HistoryEntry struct {
	ID     int64           `json:"id"`
	UserID uuid.UUID       `json:"user_id"`
	Symbol string          `json:"symbol"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Type   TransactionType `json:"transaction_type"`
	Date   time.Time       `json:"date"`
}

// Total returns shares × price
func (h *HistoryEntry) Total() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Shares))
}
