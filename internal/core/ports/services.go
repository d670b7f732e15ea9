package ports

import (
	"context"
	"time"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest is the input to the transfer orchestrator.
type TransferRequest struct {
	SenderAccountID uuid.UUID
	// Recipient is an account id or the recipient's email.
	Recipient string
	Amount    decimal.Decimal
	Currency  string
}

// TransferService orchestrates peer-to-peer transfers.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error)
}

// SwapRequest is the input to the swap engine.
type SwapRequest struct {
	AccountID uuid.UUID
	FromAsset string
	ToAsset   string
	Amount    decimal.Decimal
}

// SwapService converts between currencies of the fixed set.
type SwapService interface {
	Swap(ctx context.Context, req SwapRequest) (*domain.Swap, error)
}

// WithdrawalRequest is the input to the withdrawal processor.
type WithdrawalRequest struct {
	AccountID uuid.UUID
	Asset     string
	Amount    decimal.Decimal
	Address   string
}

// WithdrawalService debits and enqueues the external payout.
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, accountID, id uuid.UUID) (*domain.Withdrawal, error)
	// ProcessJob executes one PROCESS_WITHDRAW job on behalf of the worker.
	ProcessJob(ctx context.Context, job *domain.Job) error
}

// DepositNotification is the verified payload of a deposit webhook.
type DepositNotification struct {
	CorrelationKey string
	Destination    string
	Asset          string
	Amount         decimal.Decimal
}

// DepositResult reports what the handler did with a notification.
type DepositResult struct {
	Deposit   *domain.Deposit
	Duplicate bool
}

// DepositService credits balances from external notifications, exactly
// once per correlation key.
type DepositService interface {
	HandleNotification(ctx context.Context, n DepositNotification) (*DepositResult, error)
}

// ReportingService serves balances and ledger statements.
type ReportingService interface {
	Balances(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error)
	Statement(ctx context.Context, params StatementParams) ([]domain.LedgerEntry, int64, error)
}

// RateGateway quotes an exchange rate for a currency pair. Implementations
// must fall back to a static table when the live source is unavailable and
// fail closed only when neither has the pair.
type RateGateway interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// PayoutGateway performs the slow external payout (blockchain send).
type PayoutGateway interface {
	// Send returns the network transaction hash on success.
	Send(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error)
	// ValidateAddress checks the destination against the asset's network
	// address format.
	ValidateAddress(asset, address string) bool
}

// Notifier delivers best-effort real-time notifications after commit.
// Failures are logged and swallowed; they never affect financial state.
type Notifier interface {
	TransferCompleted(ctx context.Context, transfer *domain.Transfer)
	DepositCredited(ctx context.Context, deposit *domain.Deposit)
	WithdrawalSettled(ctx context.Context, w *domain.Withdrawal)
}

// SignatureService verifies webhook payload signatures.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenClaims are the claims extracted from a validated bearer token.
type TokenClaims struct {
	AccountID uuid.UUID
	Email     string
}

// TokenService validates bearer tokens issued by the external auth
// collaborator. Generate exists for tests and tooling.
type TokenService interface {
	Generate(accountID uuid.UUID, email string, ttl time.Duration) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// RateCache caches live exchange rates with a short TTL.
type RateCache interface {
	Get(ctx context.Context, pair string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, pair string, rate decimal.Decimal, ttl time.Duration) error
}

// DepositCache is the fast-path replay check layered over the DB unique
// constraint. A miss is never authoritative.
type DepositCache interface {
	Seen(ctx context.Context, correlationKey string) (bool, error)
	MarkSeen(ctx context.Context, correlationKey string, ttl time.Duration) error
}
