package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// HistoryRepositoryImpl implements the HistoryRepository interface
type HistoryRepositoryImpl struct {
	db querier
}

// Append inserts a ledger entry
func (r *HistoryRepositoryImpl) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	query := `
		INSERT INTO history (user_id, symbol, shares, price, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.Symbol,
		entry.Shares,
		entry.Price,
		string(entry.Type),
		entry.Date,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// ListByUser returns all entries of a user, most recent first
func (r *HistoryRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, symbol, shares, price, transaction_type, date
		FROM history
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		entry := &domain.HistoryEntry{}
		var txType string
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Symbol,
			&entry.Shares,
			&entry.Price,
			&txType,
			&entry.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Type = domain.TransactionType(txType)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
