package handler

import (
	"strconv"
	"time"

	"remit-ledger/internal/adapter/http/dto"
	"remit-ledger/internal/adapter/http/middleware"
	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"
	"remit-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReportingHandler serves balances and ledger statements.
type ReportingHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingSvc ports.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingSvc: reportingSvc}
}

// GetBalances handles GET /api/v1/balances.
func (h *ReportingHandler) GetBalances(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balances, err := h.reportingSvc.Balances(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, dto.BalanceResponse{
			Currency: b.Currency,
			Amount:   b.Amount.String(),
		})
	}
	response.OK(c, items)
}

// GetStatement handles GET /api/v1/statement.
// Query params: page, page_size, entry_type, from, to (RFC3339).
func (h *ReportingHandler) GetStatement(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	params := ports.StatementParams{
		AccountID: accountID,
		Page:      page,
		PageSize:  pageSize,
	}

	if s := c.Query("entry_type"); s != "" {
		entryType := domain.LedgerEntryType(s)
		params.EntryType = &entryType
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'from' timestamp, expected RFC3339"))
			return
		}
		params.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'to' timestamp, expected RFC3339"))
			return
		}
		params.To = &t
	}

	entries, total, err := h.reportingSvc.Statement(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryResponse(e))
	}

	// Re-apply the service-side clamping so pagination math is consistent.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	response.OK(c, dto.StatementResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// toLedgerEntryResponse converts domain.LedgerEntry to DTO.
func toLedgerEntryResponse(e domain.LedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:          e.ID.String(),
		EntryType:   string(e.EntryType),
		Amount:      e.Amount.String(),
		Currency:    e.Currency,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.ReferenceID != nil {
		ref := e.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}
