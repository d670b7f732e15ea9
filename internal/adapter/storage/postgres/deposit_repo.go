package postgres

import (
	"context"
	"errors"
	"fmt"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// DepositRepo implements ports.DepositRepository.
type DepositRepo struct {
	pool Pool
}

// NewDepositRepo creates a new DepositRepo.
func NewDepositRepo(pool Pool) *DepositRepo {
	return &DepositRepo{pool: pool}
}

// Create inserts a deposit record. The unique index on correlation_key is
// the storage-level idempotency guard; a violation surfaces as
// ports.ErrDuplicateKey so callers can treat the replay as a no-op.
func (r *DepositRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error {
	query := `INSERT INTO deposits (id, correlation_key, account_id, destination, asset, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		d.ID, d.CorrelationKey, d.AccountID, d.Destination, d.Asset, d.Amount, d.Status, d.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// GetByCorrelationKey fetches a deposit by its idempotency key.
func (r *DepositRepo) GetByCorrelationKey(ctx context.Context, key string) (*domain.Deposit, error) {
	query := `SELECT id, correlation_key, account_id, destination, asset, amount, status, created_at
		FROM deposits WHERE correlation_key = $1`

	d := &domain.Deposit{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&d.ID, &d.CorrelationKey, &d.AccountID, &d.Destination, &d.Asset, &d.Amount, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	return d, nil
}
