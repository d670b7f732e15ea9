package service

import (
	"context"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	balanceRepo ports.BalanceRepository
	ledgerRepo  ports.LedgerRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(balanceRepo ports.BalanceRepository, ledgerRepo ports.LedgerRepository) ports.ReportingService {
	return &reportingService{
		balanceRepo: balanceRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Balances returns all currency balances held by the account.
func (s *reportingService) Balances(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error) {
	balances, err := s.balanceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return balances, nil
}

// Statement returns a paginated slice of the account's ledger entries.
func (s *reportingService) Statement(ctx context.Context, params ports.StatementParams) ([]domain.LedgerEntry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	if params.EntryType != nil {
		switch *params.EntryType {
		case domain.EntryTypeDeposit, domain.EntryTypeWithdraw, domain.EntryTypeDebit,
			domain.EntryTypeCredit, domain.EntryTypeFee, domain.EntryTypeExchange:
		default:
			return nil, 0, apperror.Validation("invalid entry type filter")
		}
	}

	entries, total, err := s.ledgerRepo.ListByAccount(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return entries, total, nil
}
