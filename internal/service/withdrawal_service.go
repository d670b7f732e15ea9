package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WithdrawalConfig bounds withdrawal amounts and controls job retries.
type WithdrawalConfig struct {
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	MaxAttempts int
	BackoffBase time.Duration
}

// WithdrawalServiceImpl implements ports.WithdrawalService. The request
// path debits and enqueues; ProcessJob runs later on the worker and is the
// only code that talks to the payout gateway.
type WithdrawalServiceImpl struct {
	accountRepo    ports.AccountRepository
	balanceRepo    ports.BalanceRepository
	ledgerRepo     ports.LedgerRepository
	withdrawalRepo ports.WithdrawalRepository
	jobRepo        ports.JobRepository
	payoutGateway  ports.PayoutGateway
	transactor     ports.DBTransactor
	notifier       ports.Notifier
	cfg            WithdrawalConfig
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	accountRepo ports.AccountRepository,
	balanceRepo ports.BalanceRepository,
	ledgerRepo ports.LedgerRepository,
	withdrawalRepo ports.WithdrawalRepository,
	jobRepo ports.JobRepository,
	payoutGateway ports.PayoutGateway,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	cfg WithdrawalConfig,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		accountRepo:    accountRepo,
		balanceRepo:    balanceRepo,
		ledgerRepo:     ledgerRepo,
		withdrawalRepo: withdrawalRepo,
		jobRepo:        jobRepo,
		payoutGateway:  payoutGateway,
		transactor:     transactor,
		notifier:       notifier,
		cfg:            cfg,
		log:            log,
	}
}

// RequestWithdrawal debits the balance and enqueues the payout job in one
// transaction. The slow network send never happens here; by the time this
// returns the funds are reserved and the job is durable.
func (s *WithdrawalServiceImpl) RequestWithdrawal(ctx context.Context, req ports.WithdrawalRequest) (*domain.Withdrawal, error) {
	if req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.IsSupportedCurrency(req.Asset) {
		return nil, apperror.Validation("unsupported asset code")
	}
	if req.Amount.LessThan(s.cfg.MinAmount) || req.Amount.GreaterThan(s.cfg.MaxAmount) {
		return nil, apperror.ErrAmountOutOfBounds(s.cfg.MinAmount.String(), s.cfg.MaxAmount.String())
	}
	if !s.payoutGateway.ValidateAddress(req.Asset, req.Address) {
		return nil, apperror.ErrInvalidAddress()
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !account.CanMoveFunds() {
		return nil, apperror.ErrAccountFrozen()
	}

	amount := req.Amount.Round(domain.AmountPrecision)
	now := time.Now().UTC()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.balanceRepo.DebitIfSufficient(ctx, dbTx, account.ID, req.Asset, amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInsufficientFunds()
	}

	withdrawal := &domain.Withdrawal{
		ID:        uuid.New(),
		UserID:    account.ID,
		Asset:     req.Asset,
		Amount:    amount,
		Address:   req.Address,
		Status:    domain.WithdrawalStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.withdrawalRepo.Create(ctx, dbTx, withdrawal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   account.ID,
		EntryType:   domain.EntryTypeWithdraw,
		Amount:      amount,
		Currency:    req.Asset,
		Description: fmt.Sprintf("withdrawal to %s", req.Address),
		ReferenceID: &withdrawal.ID,
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("write ledger entry: %w", err))
	}

	job, err := domain.NewWithdrawJob(withdrawal.ID, s.cfg.MaxAttempts, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build withdraw job: %w", err))
	}
	if err := s.jobRepo.Create(ctx, dbTx, job); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("enqueue withdraw job: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("account_id", account.ID.String()).
		Str("asset", req.Asset).
		Str("amount", amount.String()).
		Msg("withdrawal accepted")

	return withdrawal, nil
}

// GetWithdrawal returns the withdrawal only to its owner.
func (s *WithdrawalServiceImpl) GetWithdrawal(ctx context.Context, accountID, id uuid.UUID) (*domain.Withdrawal, error) {
	w, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch withdrawal: %w", err))
	}
	if w == nil || w.UserID != accountID {
		// Hide other users' withdrawals behind the same 404.
		return nil, apperror.ErrNotFound("withdrawal")
	}
	return w, nil
}

// ProcessJob executes one leased PROCESS_WITHDRAW job end to end: it owns
// the payout attempt and the job's next state (completed, rescheduled or
// failed-with-compensation). Returning an error here only means the job's
// state could not be persisted; payout failures are absorbed into retries.
func (s *WithdrawalServiceImpl) ProcessJob(ctx context.Context, job *domain.Job) error {
	var payload domain.WithdrawJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return s.failJob(ctx, job, nil, fmt.Sprintf("malformed payload: %v", err))
	}

	w, err := s.withdrawalRepo.GetByID(ctx, payload.WithdrawalID)
	if err != nil {
		return fmt.Errorf("fetch withdrawal %s: %w", payload.WithdrawalID, err)
	}
	if w == nil {
		return s.failJob(ctx, job, nil, "withdrawal not found")
	}
	if w.Status != domain.WithdrawalStatusPending {
		// Redelivered job for an already settled withdrawal.
		return s.jobRepo.MarkCompleted(ctx, job.ID)
	}

	txHash, sendErr := s.payoutGateway.Send(ctx, w.Asset, w.Address, w.Amount)
	if sendErr == nil {
		if err := s.withdrawalRepo.MarkConfirmed(ctx, w.ID, txHash); err != nil {
			return fmt.Errorf("mark withdrawal confirmed: %w", err)
		}
		if err := s.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
			return fmt.Errorf("mark job completed: %w", err)
		}
		w.Status = domain.WithdrawalStatusConfirmed
		w.TxHash = &txHash
		if s.notifier != nil {
			s.notifier.WithdrawalSettled(ctx, w)
		}
		s.log.Info().
			Str("withdrawal_id", w.ID.String()).
			Str("tx_hash", txHash).
			Msg("withdrawal confirmed")
		return nil
	}

	attempts := job.Attempts + 1
	if attempts < job.MaxAttempts {
		runAt := time.Now().UTC().Add(s.backoff(attempts))
		s.log.Warn().Err(sendErr).
			Str("withdrawal_id", w.ID.String()).
			Int("attempt", attempts).
			Time("run_at", runAt).
			Msg("payout failed, rescheduling")
		return s.jobRepo.Reschedule(ctx, job.ID, attempts, runAt, sendErr.Error())
	}

	s.log.Error().Err(sendErr).
		Str("withdrawal_id", w.ID.String()).
		Int("attempts", attempts).
		Msg("payout failed terminally, compensating")
	return s.failJob(ctx, job, w, sendErr.Error())
}

// backoff grows exponentially with the attempt number.
func (s *WithdrawalServiceImpl) backoff(attempt int) time.Duration {
	d := s.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// failJob marks the job FAILED and, when a withdrawal is attached, issues
// the compensating credit. The credit, its ledger entry, the FAILED stamp
// on the withdrawal and the FAILED stamp on the job commit together. The
// conditional compensated_at stamp is what makes the credit exactly-once
// across worker crashes and redeliveries.
func (s *WithdrawalServiceImpl) failJob(ctx context.Context, job *domain.Job, w *domain.Withdrawal, reason string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if w != nil {
		now := time.Now().UTC()
		won, err := s.withdrawalRepo.MarkFailedAndCompensate(ctx, dbTx, w.ID, now)
		if err != nil {
			return fmt.Errorf("mark withdrawal failed: %w", err)
		}
		if won {
			if err := s.balanceRepo.Credit(ctx, dbTx, w.UserID, w.Asset, w.Amount); err != nil {
				return fmt.Errorf("compensating credit: %w", err)
			}
			entry := &domain.LedgerEntry{
				ID:          uuid.New(),
				AccountID:   w.UserID,
				EntryType:   domain.EntryTypeCredit,
				Amount:      w.Amount,
				Currency:    w.Asset,
				Description: "withdrawal reversal",
				ReferenceID: &w.ID,
				CreatedAt:   now,
			}
			if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
				return fmt.Errorf("write reversal ledger entry: %w", err)
			}
		}
	}

	if err := s.jobRepo.MarkFailed(ctx, dbTx, job.ID, reason); err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return dbTx.Commit(ctx)
}
