package postgres

import (
	"context"
	"errors"
	"fmt"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SwapRepo implements ports.SwapRepository.
type SwapRepo struct {
	pool Pool
}

// NewSwapRepo creates a new SwapRepo.
func NewSwapRepo(pool Pool) *SwapRepo {
	return &SwapRepo{pool: pool}
}

// Create inserts a swap within a database transaction.
func (r *SwapRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Swap) error {
	query := `INSERT INTO swaps (id, user_id, from_asset, to_asset, from_amount, to_amount,
		rate_base, spread, rate_applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		s.ID, s.UserID, s.FromAsset, s.ToAsset, s.FromAmount, s.ToAmount,
		s.RateBase, s.Spread, s.RateApplied, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

// GetByID fetches a swap by UUID.
func (r *SwapRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Swap, error) {
	query := `SELECT id, user_id, from_asset, to_asset, from_amount, to_amount,
		rate_base, spread, rate_applied, created_at
		FROM swaps WHERE id = $1`

	s := &domain.Swap{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.FromAsset, &s.ToAsset, &s.FromAmount, &s.ToAmount,
		&s.RateBase, &s.Spread, &s.RateApplied, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap: %w", err)
	}
	return s, nil
}
