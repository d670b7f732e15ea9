package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"remit-ledger/internal/adapter/http/dto"
	"remit-ledger/internal/core/ports"
	"remit-ledger/pkg/apperror"
	"remit-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SignatureHeader carries the HMAC-SHA256 signature of the raw request
// body, hex-encoded.
const SignatureHeader = "X-Signature"

// DepositHandler handles inbound deposit notifications from external
// payment and chain-watcher collaborators.
type DepositHandler struct {
	depositSvc    ports.DepositService
	signatureSvc  ports.SignatureService
	webhookSecret string
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(depositSvc ports.DepositService, signatureSvc ports.SignatureService, webhookSecret string) *DepositHandler {
	return &DepositHandler{
		depositSvc:    depositSvc,
		signatureSvc:  signatureSvc,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook handles POST /api/v1/webhooks/deposits. The signature
// covers the raw body, so the body is read and verified before any JSON
// decoding happens. Replayed notifications are acknowledged with 200 and
// duplicate=true so the sender stops retrying.
func (h *DepositHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("unable to read request body"))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	signature := c.GetHeader(SignatureHeader)
	if signature == "" || !h.signatureSvc.Verify(h.webhookSecret, string(body), signature) {
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	var req dto.DepositWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.Error(c, apperror.Validation("malformed JSON body"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.depositSvc.HandleNotification(c.Request.Context(), ports.DepositNotification{
		CorrelationKey: req.CorrelationKey,
		Destination:    req.Destination,
		Asset:          req.Asset,
		Amount:         amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DepositAckResponse{
		DepositID: result.Deposit.ID.String(),
		Status:    string(result.Deposit.Status),
		Duplicate: result.Duplicate,
	})
}
