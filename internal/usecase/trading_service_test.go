package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"papertrade/internal/domain"
	"papertrade/internal/repository/memory"
)

// priceBoard is a mutable QuoteProvider
type priceBoard map[string]string

func (b priceBoard) Lookup(_ context.Context, symbol string) (*domain.Quote, error) {
	price, ok := b[symbol]
	if !ok {
		return nil, domain.NewQuoteUnavailable("Invalid symbol")
	}
	return &domain.Quote{Symbol: symbol, Name: symbol, Price: decimal.RequireFromString(price)}, nil
}

type fixture struct {
	store  *memory.Store
	board  priceBoard
	trader *TradingService
	user   *domain.User
}

func newFixture(t *testing.T, cash string) *fixture {
	t.Helper()
	store := memory.NewStore()
	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "x", Cash: decimal.RequireFromString(cash)}
	require.NoError(t, store.Users().Create(context.Background(), user))

	board := priceBoard{"AAA": "50"}
	trader := NewTradingService(store, board, zap.NewNop())
	trader.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return &fixture{store: store, board: board, trader: trader, user: user}
}

func (f *fixture) cash(t *testing.T) decimal.Decimal {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	return u.Cash
}

func (f *fixture) held(t *testing.T, symbol string) int64 {
	t.Helper()
	n, err := f.store.Accounts().NetShares(context.Background(), f.user.ID, symbol)
	require.NoError(t, err)
	return n
}

func (f *fixture) history(t *testing.T) []*domain.HistoryEntry {
	t.Helper()
	entries, err := f.store.History().ListByUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	return entries
}

func TestTradingService_BuyThenSell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10000")

	res, err := f.trader.Buy(ctx, f.user.ID, "AAA", "10")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionBuy, res.Type)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, res.Cash.Equal(decimal.NewFromInt(9500)))
	assert.True(t, f.cash(t).Equal(decimal.NewFromInt(9500)))
	assert.Equal(t, int64(10), f.held(t, "AAA"))

	entries := f.history(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.TransactionBuy, entries[0].Type)
	assert.Equal(t, int64(10), entries[0].Shares)
	assert.True(t, entries[0].Price.Equal(decimal.NewFromInt(50)))

	f.board["AAA"] = "60"
	res, err = f.trader.Sell(ctx, f.user.ID, "aaa", " 4 ")
	require.NoError(t, err)
	assert.Equal(t, "AAA", res.Symbol)
	assert.True(t, res.Cash.Equal(decimal.NewFromInt(9740)))
	assert.True(t, f.cash(t).Equal(decimal.NewFromInt(9740)))
	assert.Equal(t, int64(6), f.held(t, "AAA"))

	entries = f.history(t)
	require.Len(t, entries, 2)
	sells := 0
	for _, e := range entries {
		if e.Type == domain.TransactionSell {
			sells++
			assert.Equal(t, int64(4), e.Shares, "ledger shares stay positive")
			assert.True(t, e.Total().Equal(decimal.NewFromInt(240)))
		}
	}
	assert.Equal(t, 1, sells)
}

func TestTradingService_SellEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")

	_, err := f.trader.Buy(ctx, f.user.ID, "AAA", "2")
	require.NoError(t, err)
	_, err = f.trader.Buy(ctx, f.user.ID, "AAA", "3")
	require.NoError(t, err)

	_, err = f.trader.Sell(ctx, f.user.ID, "AAA", "5")
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.held(t, "AAA"))
	assert.True(t, f.cash(t).Equal(decimal.NewFromInt(1000)))

	holdings, err := f.store.Accounts().Holdings(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestTradingService_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		sell   bool
		symbol string
		shares string
		kind   domain.ErrorKind
	}{
		{"blank symbol", false, "  ", "1", domain.KindValidation},
		{"non numeric shares", false, "AAA", "ten", domain.KindValidation},
		{"fractional shares", false, "AAA", "1.5", domain.KindValidation},
		{"zero shares", false, "AAA", "0", domain.KindValidation},
		{"negative shares", true, "AAA", "-3", domain.KindValidation},
		{"unknown symbol", false, "ZZZ", "1", domain.KindValidation},
		{"cost above cash", false, "AAA", "21", domain.KindInsufficientFunds},
		{"selling unowned", true, "AAA", "1", domain.KindInsufficientHoldings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "1000")

			trade := f.trader.Buy
			if tt.sell {
				trade = f.trader.Sell
			}
			_, err := trade(ctx, f.user.ID, tt.symbol, tt.shares)
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))

			assert.True(t, f.cash(t).Equal(decimal.NewFromInt(1000)), "cash unchanged")
			assert.Equal(t, int64(0), f.held(t, "AAA"))
			assert.Empty(t, f.history(t))
		})
	}
}

func TestTradingService_OversellLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")

	_, err := f.trader.Buy(ctx, f.user.ID, "AAA", "3")
	require.NoError(t, err)

	_, err = f.trader.Sell(ctx, f.user.ID, "AAA", "4")
	assert.ErrorIs(t, err, &domain.Error{Kind: domain.KindInsufficientHoldings})
	assert.True(t, f.cash(t).Equal(decimal.NewFromInt(850)))
	assert.Equal(t, int64(3), f.held(t, "AAA"))
	assert.Len(t, f.history(t), 1)
}

func TestTradingService_ExactCash(t *testing.T) {
	f := newFixture(t, "100")

	res, err := f.trader.Buy(context.Background(), f.user.ID, "AAA", "2")
	require.NoError(t, err)
	assert.True(t, res.Cash.IsZero())
}

func TestTradingService_UnknownUser(t *testing.T) {
	f := newFixture(t, "100")

	_, err := f.trader.Buy(context.Background(), uuid.New(), "AAA", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
}

func TestTradingService_ConcurrentBuysSerialize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")

	var fills, rejected atomic.Int64
	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.trader.Buy(ctx, f.user.ID, "AAA", "1")
			switch {
			case err == nil:
				fills.Add(1)
			case domain.KindOf(err) == domain.KindInsufficientFunds:
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), fills.Load())
	assert.Equal(t, int64(30), rejected.Load())
	assert.True(t, f.cash(t).IsZero())
	assert.Equal(t, int64(20), f.held(t, "AAA"))
	assert.Len(t, f.history(t), 20)
}

func TestTradingService_ExplicitPlusSign(t *testing.T) {
	f := newFixture(t, "1000")

	res, err := f.trader.Buy(context.Background(), f.user.ID, "AAA", "+2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Shares)
	assert.Equal(t, int64(2), f.held(t, "AAA"))
}
