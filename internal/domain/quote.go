package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a provider-supplied current price for a symbol
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// QuoteProvider resolves symbols to quotes. An absent quote is reported as
// a QuoteUnavailable error, which callers treat as a normal outcome.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
