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
	"github.com/shopspring/decimal"
)

// SwapServiceImpl implements ports.SwapService.
type SwapServiceImpl struct {
	accountRepo ports.AccountRepository
	balanceRepo ports.BalanceRepository
	ledgerRepo  ports.LedgerRepository
	swapRepo    ports.SwapRepository
	rateGateway ports.RateGateway
	transactor  ports.DBTransactor
	spread      decimal.Decimal
	log         zerolog.Logger
}

// NewSwapService creates a new SwapServiceImpl.
func NewSwapService(
	accountRepo ports.AccountRepository,
	balanceRepo ports.BalanceRepository,
	ledgerRepo ports.LedgerRepository,
	swapRepo ports.SwapRepository,
	rateGateway ports.RateGateway,
	transactor ports.DBTransactor,
	spread decimal.Decimal,
	log zerolog.Logger,
) *SwapServiceImpl {
	return &SwapServiceImpl{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		ledgerRepo:  ledgerRepo,
		swapRepo:    swapRepo,
		rateGateway: rateGateway,
		transactor:  transactor,
		spread:      spread,
		log:         log,
	}
}

// Swap converts req.Amount of FromAsset into ToAsset at the quoted rate
// minus the spread. The rate is quoted before the transaction opens; the
// quote used is the one recorded on the Swap row.
func (s *SwapServiceImpl) Swap(ctx context.Context, req ports.SwapRequest) (*domain.Swap, error) {
	if req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromAsset == req.ToAsset {
		return nil, apperror.ErrInvalidPair()
	}
	if !domain.IsSupportedCurrency(req.FromAsset) || !domain.IsSupportedCurrency(req.ToAsset) {
		return nil, apperror.ErrInvalidPair()
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

	baseRate, err := s.rateGateway.GetRate(ctx, req.FromAsset, req.ToAsset)
	if err != nil {
		if errors.Is(err, ports.ErrUnknownPair) {
			return nil, apperror.ErrRateUnavailable()
		}
		return nil, apperror.ErrExternalService("rate source", err)
	}

	fromAmount := req.Amount.Round(domain.AmountPrecision)
	rateApplied, toAmount := domain.ApplySpread(fromAmount, baseRate, s.spread)
	if toAmount.Sign() <= 0 {
		// Dust: the output rounds to nothing, reject rather than burn.
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.balanceRepo.DebitIfSufficient(ctx, dbTx, account.ID, req.FromAsset, fromAmount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit source asset: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.balanceRepo.Credit(ctx, dbTx, account.ID, req.ToAsset, toAmount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit target asset: %w", err))
	}

	now := time.Now().UTC()
	swap := &domain.Swap{
		ID:          uuid.New(),
		UserID:      account.ID,
		FromAsset:   req.FromAsset,
		ToAsset:     req.ToAsset,
		FromAmount:  fromAmount,
		ToAmount:    toAmount,
		RateBase:    baseRate,
		Spread:      s.spread,
		RateApplied: rateApplied,
		CreatedAt:   now,
	}
	if err := s.swapRepo.Create(ctx, dbTx, swap); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create swap: %w", err))
	}

	entries := []*domain.LedgerEntry{
		{
			ID:          uuid.New(),
			AccountID:   account.ID,
			EntryType:   domain.EntryTypeExchange,
			Amount:      fromAmount.Neg(),
			Currency:    req.FromAsset,
			Description: fmt.Sprintf("swap %s -> %s", req.FromAsset, req.ToAsset),
			ReferenceID: &swap.ID,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			AccountID:   account.ID,
			EntryType:   domain.EntryTypeExchange,
			Amount:      toAmount,
			Currency:    req.ToAsset,
			Description: fmt.Sprintf("swap %s -> %s", req.FromAsset, req.ToAsset),
			ReferenceID: &swap.ID,
			CreatedAt:   now,
		},
	}
	for _, e := range entries {
		if err := s.ledgerRepo.Create(ctx, dbTx, e); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("write ledger entry: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("swap_id", swap.ID.String()).
		Str("account_id", account.ID.String()).
		Str("from", req.FromAsset).
		Str("to", req.ToAsset).
		Str("from_amount", fromAmount.String()).
		Str("to_amount", toAmount.String()).
		Str("rate_applied", rateApplied.String()).
		Msg("swap completed")

	return swap, nil
}
