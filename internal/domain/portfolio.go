package domain

import "github.com/shopspring/decimal"

// PortfolioRow is one priced holding
type PortfolioRow struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Total  decimal.Decimal
}

// Portfolio is the current user's priced holdings plus cash
type Portfolio struct {
	Rows       []PortfolioRow
	Cash       decimal.Decimal
	GrandTotal decimal.Decimal
}

// TradeResult describes an executed buy or sell
type TradeResult struct {
	Type   TransactionType
	Symbol string
	Shares int64
	Price  decimal.Decimal
	Total  decimal.Decimal
	Cash   decimal.Decimal // cash balance after the trade
}
