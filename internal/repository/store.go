package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements domain.Store on a pgx pool
type PostgresStore struct {
	pool *pgxpool.Pool
	db   querier
	tx   bool
}

// NewPostgresStore creates a new Store backed by PostgreSQL
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

// Users returns the user repository bound to this store
func (s *PostgresStore) Users() domain.UserRepository {
	return &UserRepositoryImpl{db: s.db}
}

// Accounts returns the account repository bound to this store
func (s *PostgresStore) Accounts() domain.AccountRepository {
	return &AccountRepositoryImpl{db: s.db}
}

// History returns the history repository bound to this store
func (s *PostgresStore) History() domain.HistoryRepository {
	return &HistoryRepositoryImpl{db: s.db}
}

// WithinTx runs fn inside a single database transaction. Nested calls reuse
// the outer transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.tx {
		return fn(s)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, db: tx, tx: true})
	})
	if err != nil {
		// Domain errors pass through untouched so callers can classify them
		if domain.KindOf(err) != domain.KindUnknown {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}
