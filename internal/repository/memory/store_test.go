package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

func newUser(t *testing.T, s *Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Username: name, PasswordHash: "x", Cash: decimal.NewFromInt(100)}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := newUser(t, s, "alice")

	t.Run("duplicate username", func(t *testing.T) {
		err := s.Users().Create(ctx, &domain.User{ID: uuid.New(), Username: "alice"})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := s.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.Users().GetByUsername(ctx, "bob")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("update cash", func(t *testing.T) {
		require.NoError(t, s.Users().UpdateCash(ctx, u.ID, decimal.NewFromInt(42)))
		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Cash.Equal(decimal.NewFromInt(42)))

		assert.ErrorIs(t, s.Users().UpdateCash(ctx, uuid.New(), decimal.Zero), domain.ErrUserNotFound)
	})
}

func TestStore_Holdings(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := newUser(t, s, "alice")
	other := newUser(t, s, "bob")

	for _, row := range []domain.PositionRow{
		{UserID: u.ID, Symbol: "BBB", Shares: 5},
		{UserID: u.ID, Symbol: "AAA", Shares: 10},
		{UserID: u.ID, Symbol: "AAA", Shares: -4},
		{UserID: u.ID, Symbol: "CCC", Shares: 3},
		{UserID: u.ID, Symbol: "CCC", Shares: -3},
		{UserID: other.ID, Symbol: "AAA", Shares: 7},
	} {
		row := row
		require.NoError(t, s.Accounts().Append(ctx, &row))
	}

	holdings, err := s.Accounts().Holdings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Holding{{Symbol: "AAA", Shares: 6}, {Symbol: "BBB", Shares: 5}}, holdings)

	net, err := s.Accounts().NetShares(ctx, u.ID, "CCC")
	require.NoError(t, err)
	assert.Zero(t, net)
}

func TestStore_HistoryMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := newUser(t, s, "alice")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.History().Append(ctx, &domain.HistoryEntry{UserID: u.ID, Symbol: "OLD", Date: t0}))
	require.NoError(t, s.History().Append(ctx, &domain.HistoryEntry{UserID: u.ID, Symbol: "NEW", Date: t0.Add(time.Hour)}))

	entries, err := s.History().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "NEW", entries[0].Symbol)
	assert.Equal(t, "OLD", entries[1].Symbol)
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := newUser(t, s, "alice")

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx domain.Store) error {
			require.NoError(t, tx.Users().UpdateCash(ctx, u.ID, decimal.Zero))
			require.NoError(t, tx.Accounts().Append(ctx, &domain.PositionRow{UserID: u.ID, Symbol: "AAA", Shares: 1}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Cash.Equal(decimal.NewFromInt(100)))
		net, _ := s.Accounts().NetShares(ctx, u.ID, "AAA")
		assert.Zero(t, net)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithinTx(ctx, func(tx domain.Store) error {
			if err := tx.Users().UpdateCash(ctx, u.ID, decimal.NewFromInt(1)); err != nil {
				return err
			}
			// nested units of work join the outer one
			return tx.WithinTx(ctx, func(inner domain.Store) error {
				return inner.History().Append(ctx, &domain.HistoryEntry{UserID: u.ID, Symbol: "AAA"})
			})
		})
		require.NoError(t, err)

		got, _ := s.Users().GetByID(ctx, u.ID)
		assert.True(t, got.Cash.Equal(decimal.NewFromInt(1)))
		entries, _ := s.History().ListByUser(ctx, u.ID)
		assert.Len(t, entries, 1)
	})
}
