package service

import (
	"context"
	"fmt"
	"time"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransferServiceImpl implements ports.TransferService.
type TransferServiceImpl struct {
	accountRepo  ports.AccountRepository
	balanceRepo  ports.BalanceRepository
	ledgerRepo   ports.LedgerRepository
	transferRepo ports.TransferRepository
	transactor   ports.DBTransactor
	notifier     ports.Notifier
	feeRate      decimal.Decimal
	log          zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	accountRepo ports.AccountRepository,
	balanceRepo ports.BalanceRepository,
	ledgerRepo ports.LedgerRepository,
	transferRepo ports.TransferRepository,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	feeRate decimal.Decimal,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		transferRepo: transferRepo,
		transactor:   transactor,
		notifier:     notifier,
		feeRate:      feeRate,
		log:          log,
	}
}

// Transfer moves amount from sender to recipient and charges the fee to
// the sender on top. Either the debit, both credits and all three ledger
// entries commit together, or nothing does.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transfer, error) {
	if req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.IsSupportedCurrency(req.Currency) {
		return nil, apperror.Validation("unsupported currency code")
	}

	sender, err := s.accountRepo.GetByID(ctx, req.SenderAccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch sender: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("sender account")
	}
	if !sender.CanMoveFunds() {
		return nil, apperror.ErrAccountFrozen()
	}

	recipient, err := s.resolveRecipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, apperror.ErrSelfTransfer()
	}
	if !recipient.CanMoveFunds() {
		return nil, apperror.ErrAccountFrozen()
	}

	amount := req.Amount.Round(domain.AmountPrecision)
	fee := amount.Mul(s.feeRate).Round(domain.AmountPrecision)
	totalDebit := amount.Add(fee)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Guarded debit: the single overdraft check for the whole operation.
	ok, err := s.balanceRepo.DebitIfSufficient(ctx, dbTx, sender.ID, req.Currency, totalDebit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.balanceRepo.Credit(ctx, dbTx, recipient.ID, req.Currency, amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:               uuid.New(),
		SenderID:         sender.ID,
		RecipientID:      recipient.ID,
		AmountSent:       amount,
		CurrencySent:     req.Currency,
		AmountReceived:   amount,
		CurrencyReceived: req.Currency,
		Fee:              fee,
		FeePercentage:    s.feeRate,
		ExchangeRate:     decimal.NewFromInt(1),
		Status:           domain.TransferStatusCompleted,
		CreatedAt:        now,
		CompletedAt:      &now,
	}
	if err := s.transferRepo.Create(ctx, dbTx, transfer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transfer: %w", err))
	}

	entries := []*domain.LedgerEntry{
		{
			ID:          uuid.New(),
			AccountID:   sender.ID,
			EntryType:   domain.EntryTypeDebit,
			Amount:      amount,
			Currency:    req.Currency,
			Description: fmt.Sprintf("transfer to %s", recipient.Email),
			ReferenceID: &transfer.ID,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			AccountID:   sender.ID,
			EntryType:   domain.EntryTypeFee,
			Amount:      fee,
			Currency:    req.Currency,
			Description: "transfer fee",
			ReferenceID: &transfer.ID,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			AccountID:   recipient.ID,
			EntryType:   domain.EntryTypeCredit,
			Amount:      amount,
			Currency:    req.Currency,
			Description: fmt.Sprintf("transfer from %s", sender.Email),
			ReferenceID: &transfer.ID,
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

	// Post-commit: best-effort notifications, never rolled back.
	if s.notifier != nil {
		s.notifier.TransferCompleted(ctx, transfer)
	}

	s.log.Info().
		Str("transfer_id", transfer.ID.String()).
		Str("sender_id", sender.ID.String()).
		Str("recipient_id", recipient.ID.String()).
		Str("amount", amount.String()).
		Str("fee", fee.String()).
		Str("currency", req.Currency).
		Msg("transfer completed")

	return transfer, nil
}

// resolveRecipient accepts an account UUID or an email.
func (s *TransferServiceImpl) resolveRecipient(ctx context.Context, identifier string) (*domain.Account, error) {
	var (
		account *domain.Account
		err     error
	)
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		account, err = s.accountRepo.GetByID(ctx, id)
	} else {
		account, err = s.accountRepo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve recipient: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	return account, nil
}
