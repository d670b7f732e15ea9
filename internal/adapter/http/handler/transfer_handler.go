package handler

import (
	"remit-ledger/internal/adapter/http/dto"
	"remit-ledger/internal/adapter/http/middleware"
	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"
	"remit-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles peer-to-peer transfer endpoints.
type TransferHandler struct {
	transferSvc ports.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderAccountID: accountID,
		Recipient:       req.Recipient,
		Amount:          amount,
		Currency:        req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransferResponse(result))
}

// toTransferResponse converts domain.Transfer to DTO.
func toTransferResponse(t *domain.Transfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:          t.ID.String(),
		RecipientID: t.RecipientID.String(),
		Amount:      t.AmountSent.String(),
		Currency:    t.CurrencySent,
		Fee:         t.Fee.String(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
