package ports

import (
	"context"
	"time"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// BalanceRepository is the atomic mutation primitive. Every balance change
// in the system flows through these two calls; methods accepting pgx.Tx
// must run inside the caller's transaction together with the related
// ledger writes.
type BalanceRepository interface {
	// DebitIfSufficient decrements the (account, currency) balance only if
	// the current amount covers the debit, as one conditional statement.
	// Returns true iff exactly one row was affected. This is the sole
	// overdraft guard; no external locking is involved.
	DebitIfSufficient(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) (bool, error)
	// Credit increments the balance, creating the row on first use of a
	// currency without a read-then-write race.
	Credit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) error
	Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error)
}

// LedgerRepository defines persistence for the append-only audit trail.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, params StatementParams) ([]domain.LedgerEntry, int64, error)
}

// StatementParams holds filter + pagination for statement queries.
type StatementParams struct {
	AccountID uuid.UUID
	EntryType *domain.LedgerEntryType
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// TransferRepository defines persistence operations for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
}

// SwapRepository defines persistence operations for swaps.
type SwapRepository interface {
	Create(ctx context.Context, tx pgx.Tx, swap *domain.Swap) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Swap, error)
}

// WithdrawalRepository defines persistence operations for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	// MarkConfirmed records the payout transaction hash.
	MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error
	// MarkFailedAndCompensate flips the withdrawal to FAILED and stamps
	// compensated_at, but only if it has not been compensated before.
	// Returns true iff this call won the stamp — the caller must issue the
	// compensating credit exactly when it did.
	MarkFailedAndCompensate(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) (bool, error)
}

// DepositRepository defines persistence for external deposit events.
type DepositRepository interface {
	// Create inserts the deposit; the unique constraint on correlation_key
	// is the idempotency guarantee. A duplicate insert must surface as
	// ErrDuplicateKey.
	Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error
	GetByCorrelationKey(ctx context.Context, key string) (*domain.Deposit, error)
}

// JobRepository defines persistence for outbox jobs.
type JobRepository interface {
	Create(ctx context.Context, tx pgx.Tx, job *domain.Job) error
	// PickPending leases the next due PENDING job by flipping it to
	// PROCESSING in a single statement. Returns nil, nil when no job is due.
	PickPending(ctx context.Context, now time.Time) (*domain.Job, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	// Reschedule increments attempts and pushes run_at into the future.
	Reschedule(ctx context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastError string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
