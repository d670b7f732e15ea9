package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return ports.ErrDuplicateKey
		}
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

// --- In-Memory Balance Repo ---

// inMemoryBalanceRepo performs the guarded debit under a single mutex, so
// it provides the same atomicity as the conditional UPDATE in PostgreSQL.
// The concurrency tests rely on this being exact, not approximate.
type inMemoryBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal // key: accountID|currency
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{balances: make(map[string]decimal.Decimal)}
}

func balanceKey(accountID uuid.UUID, currency string) string {
	return accountID.String() + "|" + currency
}

func (r *inMemoryBalanceRepo) DebitIfSufficient(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(accountID, currency)
	current, ok := r.balances[key]
	if !ok || current.LessThan(amount) {
		return false, nil
	}
	r.balances[key] = current.Sub(amount)
	return true, nil
}

func (r *inMemoryBalanceRepo) Credit(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(accountID, currency)
	r.balances[key] = r.balances[key].Add(amount)
	return nil
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amount, ok := r.balances[balanceKey(accountID, currency)]
	if !ok {
		return nil, nil
	}
	return &domain.Balance{
		AccountID: accountID,
		Currency:  currency,
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (r *inMemoryBalanceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := accountID.String() + "|"
	var result []domain.Balance
	for key, amount := range r.balances {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		result = append(result, domain.Balance{
			AccountID: accountID,
			Currency:  strings.TrimPrefix(key, prefix),
			Amount:    amount,
			UpdatedAt: time.Now().UTC(),
		})
	}
	return result, nil
}

// total sums every balance of a currency across all accounts. Used by the
// conservation checks.
func (r *inMemoryBalanceRepo) total(currency string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for key, amount := range r.balances {
		if strings.HasSuffix(key, "|"+currency) {
			sum = sum.Add(amount)
		}
	}
	return sum
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerRepo) ListByAccount(ctx context.Context, params ports.StatementParams) ([]domain.LedgerEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []domain.LedgerEntry
	for _, e := range r.entries {
		if e.AccountID != params.AccountID {
			continue
		}
		if params.EntryType != nil && e.EntryType != *params.EntryType {
			continue
		}
		if params.From != nil && e.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && e.CreatedAt.After(*params.To) {
			continue
		}
		filtered = append(filtered, e)
	}
	total := int64(len(filtered))

	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// --- In-Memory Transfer Repo ---

type inMemoryTransferRepo struct {
	mu        sync.RWMutex
	transfers map[uuid.UUID]*domain.Transfer
}

func newInMemoryTransferRepo() *inMemoryTransferRepo {
	return &inMemoryTransferRepo{transfers: make(map[uuid.UUID]*domain.Transfer)}
}

func (r *inMemoryTransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = t
	return nil
}

func (r *inMemoryTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

// --- In-Memory Swap Repo ---

type inMemorySwapRepo struct {
	mu    sync.RWMutex
	swaps map[uuid.UUID]*domain.Swap
}

func newInMemorySwapRepo() *inMemorySwapRepo {
	return &inMemorySwapRepo{swaps: make(map[uuid.UUID]*domain.Swap)}
}

func (r *inMemorySwapRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps[s.ID] = s
	return nil
}

func (r *inMemorySwapRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.swaps[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

// --- In-Memory Withdrawal Repo ---

type inMemoryWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[uuid.UUID]*domain.Withdrawal
}

func newInMemoryWithdrawalRepo() *inMemoryWithdrawalRepo {
	return &inMemoryWithdrawalRepo{withdrawals: make(map[uuid.UUID]*domain.Withdrawal)}
}

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.withdrawals[w.ID] = &clone
	return nil
}

func (r *inMemoryWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	clone := *w
	return &clone, nil
}

func (r *inMemoryWithdrawalRepo) MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return fmt.Errorf("withdrawal not found")
	}
	w.Status = domain.WithdrawalStatusConfirmed
	w.TxHash = &txHash
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailedAndCompensate mimics the conditional UPDATE: the stamp is won
// at most once, no matter how many callers race for it.
func (r *inMemoryWithdrawalRepo) MarkFailedAndCompensate(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return false, nil
	}
	if w.CompensatedAt != nil {
		return false, nil
	}
	w.Status = domain.WithdrawalStatusFailed
	w.CompensatedAt = &at
	w.UpdatedAt = at
	return true, nil
}

// --- In-Memory Deposit Repo ---

type inMemoryDepositRepo struct {
	mu       sync.Mutex
	byKey    map[string]*domain.Deposit
	inserted int
}

func newInMemoryDepositRepo() *inMemoryDepositRepo {
	return &inMemoryDepositRepo{byKey: make(map[string]*domain.Deposit)}
}

func (r *inMemoryDepositRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[d.CorrelationKey]; exists {
		return ports.ErrDuplicateKey
	}
	clone := *d
	r.byKey[d.CorrelationKey] = &clone
	r.inserted++
	return nil
}

func (r *inMemoryDepositRepo) GetByCorrelationKey(ctx context.Context, key string) (*domain.Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

func (r *inMemoryDepositRepo) insertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted
}

// --- In-Memory Job Repo ---

type inMemoryJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job
}

func newInMemoryJobRepo() *inMemoryJobRepo {
	return &inMemoryJobRepo{jobs: make(map[uuid.UUID]*domain.Job)}
}

func (r *inMemoryJobRepo) Create(ctx context.Context, tx pgx.Tx, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

// PickPending leases under the same mutex that guards status flips, giving
// the single-writer property the SKIP LOCKED statement provides in SQL.
func (r *inMemoryJobRepo) PickPending(ctx context.Context, now time.Time) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Status == domain.JobStatusPending && !j.RunAt.After(now) {
			j.Status = domain.JobStatusProcessing
			j.UpdatedAt = now
			clone := *j
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *inMemoryJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job not found")
	}
	j.Status = domain.JobStatusCompleted
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryJobRepo) Reschedule(ctx context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job not found")
	}
	j.Status = domain.JobStatusPending
	j.Attempts = attempts
	j.RunAt = runAt
	j.LastError = &lastError
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryJobRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job not found")
	}
	j.Status = domain.JobStatusFailed
	j.LastError = &lastError
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryJobRepo) get(id uuid.UUID) *domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil
	}
	clone := *j
	return &clone
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Stub Payout Gateway ---

// stubPayoutGateway stands in for the blockchain RPC bridge. Address
// validation mirrors the real per-network format rules closely enough for
// end-to-end flows; Send behavior is scripted per test.
type stubPayoutGateway struct {
	mu        sync.Mutex
	txHash    string
	sendErr   error
	sendCalls int
}

func (g *stubPayoutGateway) Send(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendCalls++
	if g.sendErr != nil {
		return "", g.sendErr
	}
	return g.txHash, nil
}

func (g *stubPayoutGateway) ValidateAddress(asset, address string) bool {
	switch asset {
	case domain.CurrencyBTC:
		return strings.HasPrefix(address, "bc1") || strings.HasPrefix(address, "1") || strings.HasPrefix(address, "3")
	case domain.CurrencyETH, domain.CurrencyUSDT:
		return strings.HasPrefix(address, "0x") && len(address) == 42
	default:
		return false
	}
}

func (g *stubPayoutGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sendCalls
}
