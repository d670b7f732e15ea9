package postgres

import (
	"context"
	"errors"
	"fmt"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository. It is the only code that
// touches the balances table.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// DebitIfSufficient performs the guarded decrement. The sufficiency check
// and the mutation are one atomic statement, so concurrent debits against
// the same row serialize on the row lock and each sees a consistent
// balance; no SELECT FOR UPDATE is needed.
func (r *BalanceRepo) DebitIfSufficient(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) (bool, error) {
	query := `UPDATE balances SET amount = amount - $3, updated_at = NOW()
		WHERE account_id = $1 AND currency = $2 AND amount >= $3`

	tag, err := tx.Exec(ctx, query, accountID, currency, amount)
	if err != nil {
		return false, fmt.Errorf("guarded debit: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Credit increments the balance, creating the row on first credit of a new
// currency. The upsert avoids a read-then-write race on first use.
func (r *BalanceRepo) Credit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) error {
	query := `INSERT INTO balances (account_id, currency, amount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, currency)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = NOW()`

	if _, err := tx.Exec(ctx, query, accountID, currency, amount); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// Get fetches a single (account, currency) balance. Returns nil, nil when
// the row does not exist yet.
func (r *BalanceRepo) Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	query := `SELECT account_id, currency, amount, updated_at
		FROM balances WHERE account_id = $1 AND currency = $2`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, accountID, currency).Scan(
		&b.AccountID, &b.Currency, &b.Amount, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// ListByAccount fetches all balances of one account.
func (r *BalanceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error) {
	query := `SELECT account_id, currency, amount, updated_at
		FROM balances WHERE account_id = $1 ORDER BY currency`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.AccountID, &b.Currency, &b.Amount, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
