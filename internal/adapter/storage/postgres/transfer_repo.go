package postgres

import (
	"context"
	"errors"
	"fmt"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create inserts a transfer within a database transaction.
func (r *TransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	query := `INSERT INTO transfers (id, sender_id, recipient_id, amount_sent, currency_sent,
		amount_received, currency_received, fee, fee_percentage, exchange_rate, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.SenderID, t.RecipientID, t.AmountSent, t.CurrencySent,
		t.AmountReceived, t.CurrencyReceived, t.Fee, t.FeePercentage,
		t.ExchangeRate, t.Status, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByID fetches a transfer by UUID.
func (r *TransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT id, sender_id, recipient_id, amount_sent, currency_sent,
		amount_received, currency_received, fee, fee_percentage, exchange_rate, status, created_at, completed_at
		FROM transfers WHERE id = $1`

	t := &domain.Transfer{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SenderID, &t.RecipientID, &t.AmountSent, &t.CurrencySent,
		&t.AmountReceived, &t.CurrencyReceived, &t.Fee, &t.FeePercentage,
		&t.ExchangeRate, &t.Status, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}
