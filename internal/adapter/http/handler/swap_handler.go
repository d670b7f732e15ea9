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

// SwapHandler handles currency swap endpoints.
type SwapHandler struct {
	swapSvc ports.SwapService
}

// NewSwapHandler creates a new SwapHandler.
func NewSwapHandler(swapSvc ports.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// Swap handles POST /api/v1/swaps.
func (h *SwapHandler) Swap(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.swapSvc.Swap(c.Request.Context(), ports.SwapRequest{
		AccountID: accountID,
		FromAsset: req.FromAsset,
		ToAsset:   req.ToAsset,
		Amount:    amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSwapResponse(result))
}

// toSwapResponse converts domain.Swap to DTO.
func toSwapResponse(s *domain.Swap) dto.SwapResponse {
	return dto.SwapResponse{
		ID:          s.ID.String(),
		FromAsset:   s.FromAsset,
		ToAsset:     s.ToAsset,
		FromAmount:  s.FromAmount.String(),
		ToAmount:    s.ToAmount.String(),
		RateApplied: s.RateApplied.String(),
		CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
