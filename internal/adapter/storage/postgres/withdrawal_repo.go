package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create inserts a withdrawal within a database transaction.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (id, user_id, asset, amount, address, status, tx_hash, compensated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.UserID, w.Asset, w.Amount, w.Address, w.Status,
		w.TxHash, w.CompensatedAt, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// GetByID fetches a withdrawal by UUID.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	query := `SELECT id, user_id, asset, amount, address, status, tx_hash, compensated_at, created_at, updated_at
		FROM withdrawals WHERE id = $1`

	w := &domain.Withdrawal{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.Asset, &w.Amount, &w.Address, &w.Status,
		&w.TxHash, &w.CompensatedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	return w, nil
}

// MarkConfirmed records the payout transaction hash after a successful send.
func (r *WithdrawalRepo) MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error {
	query := `UPDATE withdrawals SET status = $2, tx_hash = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, domain.WithdrawalStatusConfirmed, txHash)
	if err != nil {
		return fmt.Errorf("confirm withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal not found: %s", id)
	}
	return nil
}

// MarkFailedAndCompensate flips the withdrawal to FAILED and stamps
// compensated_at, conditional on it never having been stamped. The
// condition makes the compensating credit exactly-once even if a
// supervisor re-runs an already failed job.
func (r *WithdrawalRepo) MarkFailedAndCompensate(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE withdrawals SET status = $2, compensated_at = $3, updated_at = NOW()
		WHERE id = $1 AND compensated_at IS NULL`

	tag, err := tx.Exec(ctx, query, id, domain.WithdrawalStatusFailed, at)
	if err != nil {
		return false, fmt.Errorf("mark withdrawal failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
