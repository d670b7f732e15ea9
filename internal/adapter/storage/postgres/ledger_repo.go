package postgres

import (
	"context"
	"fmt"
	"strings"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. The table is append-only:
// there is deliberately no update or delete here.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, account_id, entry_type, amount, currency, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.AccountID, e.EntryType, e.Amount, e.Currency,
		e.Description, e.ReferenceID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByAccount returns a page of entries plus the unpaginated total.
func (r *LedgerRepo) ListByAccount(ctx context.Context, params ports.StatementParams) ([]domain.LedgerEntry, int64, error) {
	where := []string{"account_id = $1"}
	args := []any{params.AccountID}

	if params.EntryType != nil {
		args = append(args, *params.EntryType)
		where = append(where, fmt.Sprintf("entry_type = $%d", len(args)))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM ledger_entries WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 50
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)

	query := fmt.Sprintf(`SELECT id, account_id, entry_type, amount, currency, description, reference_id, created_at
		FROM ledger_entries WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.EntryType, &e.Amount,
			&e.Currency, &e.Description, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
