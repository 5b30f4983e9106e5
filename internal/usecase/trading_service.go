package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"papertrade/internal/domain"
	"papertrade/internal/utils"
)

// TradingService executes buy and sell orders against the user's cash and positions
type TradingService struct {
	store  domain.Store
	quotes domain.QuoteProvider
	logger *zap.Logger
	now    func() time.Time
}

// NewTradingService creates a new TradingService
func NewTradingService(
	store domain.Store,
	quotes domain.QuoteProvider,
	logger *zap.Logger,
) *TradingService {
	return &TradingService{
		store:  store,
		quotes: quotes,
		logger: logger.Named("trading"),
		now:    utils.Now,
	}
}

// order is a validated and priced trade request
type order struct {
	symbol string
	shares int64
	price  decimal.Decimal
	total  decimal.Decimal
}

// Buy purchases shares at the current quote. Cash, position and history are
// updated in one transaction or not at all.
func (ts *TradingService) Buy(ctx context.Context, userID uuid.UUID, symbol, shares string) (*domain.TradeResult, error) {
	o, err := ts.prepare(ctx, symbol, shares)
	if err != nil {
		return nil, err
	}

	var cash decimal.Decimal
	err = ts.store.WithinTx(ctx, func(tx domain.Store) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !user.CanAfford(o.total) {
			return domain.NewInsufficientFunds("Not enough cash")
		}

		cash = user.Cash.Sub(o.total)
		if err := tx.Users().UpdateCash(ctx, userID, cash); err != nil {
			return fmt.Errorf("failed to update cash: %w", err)
		}
		return ts.record(ctx, tx, user, o, domain.TransactionBuy)
	})
	if err != nil {
		return nil, err
	}

	ts.logger.Info("order filled",
		zap.String("user_id", userID.String()),
		zap.String("type", string(domain.TransactionBuy)),
		zap.String("symbol", o.symbol),
		zap.Int64("shares", o.shares),
		zap.String("price", o.price.String()),
	)
	return o.result(domain.TransactionBuy, cash), nil
}

// Sell disposes of shares the user holds at the current quote
func (ts *TradingService) Sell(ctx context.Context, userID uuid.UUID, symbol, shares string) (*domain.TradeResult, error) {
	o, err := ts.prepare(ctx, symbol, shares)
	if err != nil {
		return nil, err
	}

	var cash decimal.Decimal
	err = ts.store.WithinTx(ctx, func(tx domain.Store) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		held, err := tx.Accounts().NetShares(ctx, userID, o.symbol)
		if err != nil {
			return fmt.Errorf("failed to load holdings: %w", err)
		}
		if held < o.shares {
			return domain.NewInsufficientHoldings("Not enough shares")
		}

		cash = user.Cash.Add(o.total)
		if err := tx.Users().UpdateCash(ctx, userID, cash); err != nil {
			return fmt.Errorf("failed to update cash: %w", err)
		}
		return ts.record(ctx, tx, user, o, domain.TransactionSell)
	})
	if err != nil {
		return nil, err
	}

	ts.logger.Info("order filled",
		zap.String("user_id", userID.String()),
		zap.String("type", string(domain.TransactionSell)),
		zap.String("symbol", o.symbol),
		zap.Int64("shares", o.shares),
		zap.String("price", o.price.String()),
	)
	return o.result(domain.TransactionSell, cash), nil
}

// prepare validates the raw form input and prices the order
func (ts *TradingService) prepare(ctx context.Context, symbol, shares string) (*order, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.NewValidationError("Symbol cannot be blank")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(shares), 10, 64)
	if err != nil || n <= 0 {
		return nil, domain.NewValidationError("Shares must be a positive integer")
	}

	quote, err := ts.quotes.Lookup(ctx, symbol)
	if err != nil || quote == nil {
		return nil, domain.NewValidationError("Invalid symbol")
	}

	return &order{
		symbol: quote.Symbol,
		shares: n,
		price:  quote.Price,
		total:  quote.Price.Mul(decimal.NewFromInt(n)),
	}, nil
}

// record appends the signed position row and the ledger entry
func (ts *TradingService) record(ctx context.Context, tx domain.Store, user *domain.User, o *order, typ domain.TransactionType) error {
	now := ts.now()

	signed := o.shares
	if typ == domain.TransactionSell {
		signed = -signed
	}

	row := &domain.PositionRow{
		UserID:   user.ID,
		Symbol:   o.symbol,
		Shares:   signed,
		Price:    o.price,
		Date:     now,
		Username: user.Username,
	}
	if err := tx.Accounts().Append(ctx, row); err != nil {
		return fmt.Errorf("failed to append position: %w", err)
	}

	entry := &domain.HistoryEntry{
		UserID: user.ID,
		Symbol: o.symbol,
		Shares: o.shares,
		Price:  o.price,
		Type:   typ,
		Date:   now,
	}
	if err := tx.History().Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (o *order) result(typ domain.TransactionType, cash decimal.Decimal) *domain.TradeResult {
	return &domain.TradeResult{
		Type:   typ,
		Symbol: o.symbol,
		Shares: o.shares,
		Price:  o.price,
		Total:  o.total,
		Cash:   cash,
	}
}
