package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// AccountRepositoryImpl implements the AccountRepository interface
type AccountRepositoryImpl struct {
	db querier
}

// Append inserts a signed position row
func (r *AccountRepositoryImpl) Append(ctx context.Context, row *domain.PositionRow) error {
	query := `
		INSERT INTO account (user_id, symbol, shares, price, date, name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		row.UserID,
		row.Symbol,
		row.Shares,
		row.Price,
		row.Date,
		row.Username,
	).Scan(&row.ID)

	if err != nil {
		return fmt.Errorf("failed to append position row: %w", err)
	}

	return nil
}

// Holdings returns net shares per symbol for symbols with a positive holding
func (r *AccountRepositoryImpl) Holdings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	query := `
		SELECT symbol, SUM(shares)::BIGINT AS total_shares
		FROM account
		WHERE user_id = $1
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.Symbol, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// NetShares returns the net shares held for one symbol
func (r *AccountRepositoryImpl) NetShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(shares), 0)::BIGINT
		FROM account
		WHERE user_id = $1 AND symbol = $2
	`

	var shares int64
	if err := r.db.QueryRow(ctx, query, userID, symbol).Scan(&shares); err != nil {
		return 0, fmt.Errorf("failed to sum shares for %s: %w", symbol, err)
	}

	return shares, nil
}
