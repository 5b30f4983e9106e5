package dto

import "papertrade/internal/domain"

// Page is the view model shared by every HTML template
type Page struct {
	LoggedIn    bool
	CurrentUser string
	Flash       string
	Error       string

	// echoed form values
	Username string
	Symbol   string
	Shares   string

	Portfolio *domain.Portfolio
	Symbols   []string
	Entries   []*domain.HistoryEntry
	Quote     *domain.Quote

	// apology
	Status  int
	Message string
}
