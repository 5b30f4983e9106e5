package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"papertrade/internal/domain"
)

// maxConcurrentLookups caps in-flight quote requests per portfolio
const maxConcurrentLookups = 8

// PortfolioService values a user's holdings against current quotes
type PortfolioService struct {
	store         domain.Store
	quotes        domain.QuoteProvider
	lookupTimeout time.Duration
	logger        *zap.Logger
}

// NewPortfolioService creates a new PortfolioService. lookupTimeout bounds
// the pricing of a whole portfolio, not each symbol; zero means no bound.
func NewPortfolioService(store domain.Store, quotes domain.QuoteProvider, lookupTimeout time.Duration, logger *zap.Logger) *PortfolioService {
	return &PortfolioService{
		store:         store,
		quotes:        quotes,
		lookupTimeout: lookupTimeout,
		logger:        logger.Named("portfolio"),
	}
}

// GetPortfolio returns priced holdings, cash and grand total. Symbols whose
// quote cannot be resolved before the shared deadline are left out of both
// the rows and the total.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	holdings, err := s.store.Accounts().Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{
		Rows:       make([]domain.PortfolioRow, 0, len(holdings)),
		Cash:       user.Cash,
		GrandTotal: user.Cash,
	}

	quotes := s.priceAll(ctx, holdings)
	for i, h := range holdings {
		quote := quotes[i]
		if quote == nil {
			continue
		}

		total := quote.Price.Mul(decimal.NewFromInt(h.Shares))
		portfolio.Rows = append(portfolio.Rows, domain.PortfolioRow{
			Symbol: h.Symbol,
			Name:   quote.Name,
			Shares: h.Shares,
			Price:  quote.Price,
			Total:  total,
		})
		portfolio.GrandTotal = portfolio.GrandTotal.Add(total)
	}

	return portfolio, nil
}

// priceAll looks up every holding concurrently. The result is index-aligned
// with holdings; a nil entry marks a symbol that could not be priced.
func (s *PortfolioService) priceAll(ctx context.Context, holdings []domain.Holding) []*domain.Quote {
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	quotes := make([]*domain.Quote, len(holdings))
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, h := range holdings {
		i, h := i, h
		g.Go(func() error {
			quote, err := s.quotes.Lookup(ctx, h.Symbol)
			if err != nil {
				s.logger.Debug("skipping unpriced holding", zap.String("symbol", h.Symbol), zap.Error(err))
				return nil
			}
			quotes[i] = quote
			return nil
		})
	}
	_ = g.Wait()
	return quotes
}

// OwnedSymbols lists the symbols with a positive net holding, sorted
func (s *PortfolioService) OwnedSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	holdings, err := s.store.Accounts().Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	return symbols, nil
}

// History returns the user's ledger, most recent first
func (s *PortfolioService) History(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	return s.store.History().ListByUser(ctx, userID)
}
