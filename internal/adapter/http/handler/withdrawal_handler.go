package handler

import (
	"remit-ledger/internal/adapter/http/dto"
	"remit-ledger/internal/adapter/http/middleware"
	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"
	"remit-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler handles crypto withdrawal endpoints.
type WithdrawalHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// RequestWithdrawal handles POST /api/v1/withdrawals. The response is
// 202: the debit is final but the payout settles asynchronously.
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.withdrawalSvc.RequestWithdrawal(c.Request.Context(), ports.WithdrawalRequest{
		AccountID: accountID,
		Asset:     req.Asset,
		Amount:    amount,
		Address:   req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toWithdrawalResponse(result))
}

// GetWithdrawal handles GET /api/v1/withdrawals/:id.
func (h *WithdrawalHandler) GetWithdrawal(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("withdrawal"))
		return
	}

	result, err := h.withdrawalSvc.GetWithdrawal(c.Request.Context(), accountID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWithdrawalResponse(result))
}

// toWithdrawalResponse converts domain.Withdrawal to DTO.
func toWithdrawalResponse(w *domain.Withdrawal) dto.WithdrawalResponse {
	return dto.WithdrawalResponse{
		ID:        w.ID.String(),
		Asset:     w.Asset,
		Amount:    w.Amount.String(),
		Address:   w.Address,
		Status:    string(w.Status),
		TxHash:    w.TxHash,
		CreatedAt: w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
