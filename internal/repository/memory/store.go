// Package memory provides an in-process domain.Store. Transactions work on a
// copy of the state that replaces the shared state only when fn succeeds.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

type state struct {
	users     map[uuid.UUID]domain.User
	usernames map[string]uuid.UUID
	account   []domain.PositionRow
	history   []domain.HistoryEntry
	nextRowID int64
	nextTxID  int64
}

func newState() *state {
	return &state{
		users:     make(map[uuid.UUID]domain.User),
		usernames: make(map[string]uuid.UUID),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[uuid.UUID]domain.User, len(s.users)),
		usernames: make(map[string]uuid.UUID, len(s.usernames)),
		account:   append([]domain.PositionRow(nil), s.account...),
		history:   append([]domain.HistoryEntry(nil), s.history...),
		nextRowID: s.nextRowID,
		nextTxID:  s.nextTxID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	return c
}

// Store implements domain.Store in memory
type Store struct {
	mu      *sync.Mutex
	root    **state
	txState *state // non-nil inside WithinTx
}

// NewStore creates an empty Store
func NewStore() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, root: &st}
}

// Users returns the user repository bound to this store
func (s *Store) Users() domain.UserRepository { return userRepo{s} }

// Accounts returns the account repository bound to this store
func (s *Store) Accounts() domain.AccountRepository { return accountRepo{s} }

// History returns the history repository bound to this store
func (s *Store) History() domain.HistoryRepository { return historyRepo{s} }

// WithinTx runs fn on a private copy of the state and publishes it on success.
// Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.txState != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := (*s.root).clone()
	if err := fn(&Store{mu: s.mu, root: s.root, txState: work}); err != nil {
		return err
	}
	*s.root = work
	return nil
}

// do runs f against the current state, locking unless inside a transaction
func (s *Store) do(f func(st *state) error) error {
	if s.txState != nil {
		return f(s.txState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(*s.root)
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.usernames[user.Username]; ok {
			return domain.ErrUsernameTaken
		}
		st.users[user.ID] = *user
		st.usernames[user.Username] = user.ID
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := r.s.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no row lock: transactions already hold the store mutex
func (r userRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var id uuid.UUID
	err := r.s.do(func(st *state) error {
		found, ok := st.usernames[username]
		if !ok {
			return domain.ErrUserNotFound
		}
		id = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r userRepo) UpdateCash(_ context.Context, id uuid.UUID, cash decimal.Decimal) error {
	return r.s.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.Cash = cash
		st.users[id] = u
		return nil
	})
}

type accountRepo struct{ s *Store }

func (r accountRepo) Append(_ context.Context, row *domain.PositionRow) error {
	return r.s.do(func(st *state) error {
		st.nextRowID++
		row.ID = st.nextRowID
		st.account = append(st.account, *row)
		return nil
	})
}

func (r accountRepo) Holdings(_ context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := r.s.do(func(st *state) error {
		totals := make(map[string]int64)
		for _, row := range st.account {
			if row.UserID == userID {
				totals[row.Symbol] += row.Shares
			}
		}
		for symbol, shares := range totals {
			if shares > 0 {
				holdings = append(holdings, domain.Holding{Symbol: symbol, Shares: shares})
			}
		}
		return nil
	})
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, err
}

func (r accountRepo) NetShares(_ context.Context, userID uuid.UUID, symbol string) (int64, error) {
	var total int64
	err := r.s.do(func(st *state) error {
		for _, row := range st.account {
			if row.UserID == userID && row.Symbol == symbol {
				total += row.Shares
			}
		}
		return nil
	})
	return total, err
}

type historyRepo struct{ s *Store }

func (r historyRepo) Append(_ context.Context, entry *domain.HistoryEntry) error {
	return r.s.do(func(st *state) error {
		st.nextTxID++
		entry.ID = st.nextTxID
		st.history = append(st.history, *entry)
		return nil
	})
}

func (r historyRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	err := r.s.do(func(st *state) error {
		for i := range st.history {
			if st.history[i].UserID == userID {
				e := st.history[i]
				entries = append(entries, &e)
			}
		}
		return nil
	})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, err
}
