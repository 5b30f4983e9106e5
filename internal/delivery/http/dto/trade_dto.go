package dto

// TradeForm represents a buy or sell form submission. Shares is kept as
// submitted and parsed by the trading service.
type TradeForm struct {
	Symbol string `form:"symbol"`
	Shares string `form:"shares"`
}

// QuoteForm represents the quote lookup form
type QuoteForm struct {
	Symbol string `form:"symbol"`
}
