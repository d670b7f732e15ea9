package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// depositCacheTTL bounds the fast-path replay window. The DB unique
// constraint stays authoritative after expiry.
const depositCacheTTL = 24 * time.Hour

// DepositServiceImpl implements ports.DepositService.
type DepositServiceImpl struct {
	accountRepo  ports.AccountRepository
	balanceRepo  ports.BalanceRepository
	ledgerRepo   ports.LedgerRepository
	depositRepo  ports.DepositRepository
	depositCache ports.DepositCache
	transactor   ports.DBTransactor
	notifier     ports.Notifier
	log          zerolog.Logger
}

// NewDepositService creates a new DepositServiceImpl.
func NewDepositService(
	accountRepo ports.AccountRepository,
	balanceRepo ports.BalanceRepository,
	ledgerRepo ports.LedgerRepository,
	depositRepo ports.DepositRepository,
	depositCache ports.DepositCache,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	log zerolog.Logger,
) *DepositServiceImpl {
	return &DepositServiceImpl{
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		depositRepo:  depositRepo,
		depositCache: depositCache,
		transactor:   transactor,
		notifier:     notifier,
		log:          log,
	}
}

// HandleNotification credits the destination balance exactly once per
// correlation key. Replays return the original deposit with Duplicate set.
// Two layers back the guarantee: a Redis fast path and, authoritatively,
// the unique constraint on correlation_key.
func (s *DepositServiceImpl) HandleNotification(ctx context.Context, n ports.DepositNotification) (*ports.DepositResult, error) {
	if n.CorrelationKey == "" {
		return nil, apperror.Validation("missing correlation key")
	}
	if n.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.IsSupportedCurrency(n.Asset) {
		return nil, apperror.Validation("unsupported asset code")
	}

	// Fast path: a cache hit means we already processed this key. A miss
	// proves nothing; the insert below decides.
	if s.depositCache != nil {
		if seen, err := s.depositCache.Seen(ctx, n.CorrelationKey); err != nil {
			s.log.Warn().Err(err).Msg("deposit cache read failed, falling through to db")
		} else if seen {
			return s.replay(ctx, n.CorrelationKey)
		}
	}

	account, err := s.resolveDestination(ctx, n.Destination)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve destination: %w", err))
	}

	now := time.Now().UTC()
	deposit := &domain.Deposit{
		ID:             uuid.New(),
		CorrelationKey: n.CorrelationKey,
		Destination:    n.Destination,
		Asset:          n.Asset,
		Amount:         n.Amount.Round(domain.AmountPrecision),
		Status:         domain.DepositStatusParked,
		CreatedAt:      now,
	}
	if account != nil {
		deposit.AccountID = &account.ID
		deposit.Status = domain.DepositStatusCredited
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.depositRepo.Create(ctx, dbTx, deposit); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			// Lost the race to a concurrent replay; the winner credited.
			return s.replay(ctx, n.CorrelationKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create deposit: %w", err))
	}

	if account != nil {
		if err := s.balanceRepo.Credit(ctx, dbTx, account.ID, deposit.Asset, deposit.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit deposit: %w", err))
		}
		entry := &domain.LedgerEntry{
			ID:          uuid.New(),
			AccountID:   account.ID,
			EntryType:   domain.EntryTypeDeposit,
			Amount:      deposit.Amount,
			Currency:    deposit.Asset,
			Description: fmt.Sprintf("external deposit %s", n.CorrelationKey),
			ReferenceID: &deposit.ID,
			CreatedAt:   now,
		}
		if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("write ledger entry: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if s.depositCache != nil {
		if err := s.depositCache.MarkSeen(ctx, n.CorrelationKey, depositCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("deposit cache write failed")
		}
	}

	if account != nil {
		if s.notifier != nil {
			s.notifier.DepositCredited(ctx, deposit)
		}
		s.log.Info().
			Str("deposit_id", deposit.ID.String()).
			Str("account_id", account.ID.String()).
			Str("asset", deposit.Asset).
			Str("amount", deposit.Amount.String()).
			Msg("deposit credited")
	} else {
		s.log.Warn().
			Str("deposit_id", deposit.ID.String()).
			Str("destination", n.Destination).
			Str("correlation_key", n.CorrelationKey).
			Msg("deposit parked: unknown destination")
	}

	return &ports.DepositResult{Deposit: deposit, Duplicate: false}, nil
}

// replay loads the previously recorded deposit for a duplicate key.
func (s *DepositServiceImpl) replay(ctx context.Context, key string) (*ports.DepositResult, error) {
	existing, err := s.depositRepo.GetByCorrelationKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load replayed deposit: %w", err))
	}
	if existing == nil {
		// Cache said seen but the row is gone; treat as internal, never
		// credit on this path.
		return nil, apperror.InternalError(fmt.Errorf("deposit %s marked seen but not found", key))
	}
	s.log.Info().
		Str("correlation_key", key).
		Msg("duplicate deposit notification ignored")
	return &ports.DepositResult{Deposit: existing, Duplicate: true}, nil
}

// resolveDestination accepts an account id or an email. Unknown
// destinations yield nil, nil so the event can be parked.
func (s *DepositServiceImpl) resolveDestination(ctx context.Context, destination string) (*domain.Account, error) {
	if id, err := uuid.Parse(destination); err == nil {
		return s.accountRepo.GetByID(ctx, id)
	}
	return s.accountRepo.GetByEmail(ctx, destination)
}
