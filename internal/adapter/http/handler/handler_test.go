package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"remit-ledger/internal/adapter/http/dto"
	"remit-ledger/internal/adapter/http/middleware"
	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/internal/core/ports/mocks"
	"remit-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Transfer Handler Tests ---

func TestTransferHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	senderID := uuid.New()
	recipientID := uuid.New()
	transferID := uuid.New()
	now := time.Now()

	mockTransfer.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		SenderAccountID: senderID,
		Recipient:       "bob@example.com",
		Amount:          decimal.RequireFromString("30"),
		Currency:        "USD",
	}).Return(&domain.Transfer{
		ID:           transferID,
		SenderID:     senderID,
		RecipientID:  recipientID,
		AmountSent:   decimal.RequireFromString("30"),
		CurrencySent: "USD",
		Fee:          decimal.RequireFromString("0.54"),
		Status:       domain.TransferStatusCompleted,
		CreatedAt:    now,
	}, nil)

	body, _ := json.Marshal(dto.TransferRequest{
		Recipient: "bob@example.com",
		Amount:    "30",
		Currency:  "USD",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, senderID)

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, transferID.String(), data["id"])
	assert.Equal(t, "0.54", data["fee"])
	assert.Equal(t, "COMPLETED", data["status"])
}

func TestTransferHandler_MissingAccountID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.Transfer(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransferHandler_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	// Negative amount fails the decimal_amount binding rule.
	body, _ := json.Marshal(dto.TransferRequest{
		Recipient: "bob@example.com",
		Amount:    "-5",
		Currency:  "USD",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, uuid.New())

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferHandler_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	mockTransfer.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	body, _ := json.Marshal(dto.TransferRequest{
		Recipient: "bob@example.com",
		Amount:    "99999",
		Currency:  "USD",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, uuid.New())

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LGR_001", resp["error_code"])
}

// --- Swap Handler Tests ---

func TestSwapHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSwap := mocks.NewMockSwapService(ctrl)
	h := NewSwapHandler(mockSwap)

	accountID := uuid.New()
	swapID := uuid.New()
	now := time.Now()

	mockSwap.EXPECT().Swap(gomock.Any(), ports.SwapRequest{
		AccountID: accountID,
		FromAsset: "USD",
		ToAsset:   "EUR",
		Amount:    decimal.RequireFromString("100"),
	}).Return(&domain.Swap{
		ID:          swapID,
		UserID:      accountID,
		FromAsset:   "USD",
		ToAsset:     "EUR",
		FromAmount:  decimal.RequireFromString("100"),
		ToAmount:    decimal.RequireFromString("91.54"),
		RateApplied: decimal.RequireFromString("0.9154"),
		CreatedAt:   now,
	}, nil)

	body, _ := json.Marshal(dto.SwapRequest{
		FromAsset: "USD",
		ToAsset:   "EUR",
		Amount:    "100",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, accountID)

	h.Swap(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "91.54", data["to_amount"])
	assert.Equal(t, "0.9154", data["rate_applied"])
}

func TestSwapHandler_RateUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSwap := mocks.NewMockSwapService(ctrl)
	h := NewSwapHandler(mockSwap)

	mockSwap.EXPECT().Swap(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrRateUnavailable())

	body, _ := json.Marshal(dto.SwapRequest{
		FromAsset: "EUR",
		ToAsset:   "BTC",
		Amount:    "50",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, uuid.New())

	h.Swap(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LGR_008", resp["error_code"])
}

// --- Withdrawal Handler Tests ---

func TestWithdrawalHandler_RequestAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWithdrawal := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockWithdrawal)

	accountID := uuid.New()
	withdrawalID := uuid.New()
	now := time.Now()

	mockWithdrawal.EXPECT().RequestWithdrawal(gomock.Any(), ports.WithdrawalRequest{
		AccountID: accountID,
		Asset:     "BTC",
		Amount:    decimal.RequireFromString("0.5"),
		Address:   "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
	}).Return(&domain.Withdrawal{
		ID:        withdrawalID,
		UserID:    accountID,
		Asset:     "BTC",
		Amount:    decimal.RequireFromString("0.5"),
		Address:   "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		Status:    domain.WithdrawalStatusPending,
		CreatedAt: now,
	}, nil)

	body, _ := json.Marshal(dto.WithdrawalRequest{
		Asset:   "BTC",
		Amount:  "0.5",
		Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxAccountID, accountID)

	h.RequestWithdrawal(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, withdrawalID.String(), data["id"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestWithdrawalHandler_GetSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWithdrawal := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockWithdrawal)

	accountID := uuid.New()
	withdrawalID := uuid.New()
	txHash := "0xabc123"

	mockWithdrawal.EXPECT().GetWithdrawal(gomock.Any(), accountID, withdrawalID).Return(&domain.Withdrawal{
		ID:      withdrawalID,
		UserID:  accountID,
		Asset:   "ETH",
		Amount:  decimal.RequireFromString("1.25"),
		Address: "0x52908400098527886E0F7030069857D2E4169EE7",
		Status:  domain.WithdrawalStatusConfirmed,
		TxHash:  &txHash,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: withdrawalID.String()}}
	c.Set(middleware.CtxAccountID, accountID)

	h.GetWithdrawal(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", data["status"])
	assert.Equal(t, txHash, data["tx_hash"])
}

func TestWithdrawalHandler_GetMalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWithdrawal := mocks.NewMockWithdrawalService(ctrl)
	h := NewWithdrawalHandler(mockWithdrawal)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Set(middleware.CtxAccountID, uuid.New())

	h.GetWithdrawal(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Deposit Webhook Tests ---

func depositWebhookContext(t *testing.T, body []byte, signature string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if signature != "" {
		c.Request.Header.Set(SignatureHeader, signature)
	}
	return c, w
}

func TestDepositWebhook_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDeposit := mocks.NewMockDepositService(ctrl)
	mockSig := mocks.NewMockSignatureService(ctrl)
	h := NewDepositHandler(mockDeposit, mockSig, "whsec_test")

	depositID := uuid.New()
	accountID := uuid.New()

	body, _ := json.Marshal(dto.DepositWebhookRequest{
		CorrelationKey: "prov-evt-001",
		Destination:    "alice@example.com",
		Asset:          "USD",
		Amount:         "250",
	})

	mockSig.EXPECT().Verify("whsec_test", string(body), "valid-sig").Return(true)
	mockDeposit.EXPECT().HandleNotification(gomock.Any(), ports.DepositNotification{
		CorrelationKey: "prov-evt-001",
		Destination:    "alice@example.com",
		Asset:          "USD",
		Amount:         decimal.RequireFromString("250"),
	}).Return(&ports.DepositResult{
		Deposit: &domain.Deposit{
			ID:             depositID,
			CorrelationKey: "prov-evt-001",
			AccountID:      &accountID,
			Status:         domain.DepositStatusCredited,
		},
	}, nil)

	c, w := depositWebhookContext(t, body, "valid-sig")
	h.HandleWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, depositID.String(), data["deposit_id"])
	assert.Equal(t, "CREDITED", data["status"])
	assert.Equal(t, false, data["duplicate"])
}

func TestDepositWebhook_InvalidSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDeposit := mocks.NewMockDepositService(ctrl)
	mockSig := mocks.NewMockSignatureService(ctrl)
	h := NewDepositHandler(mockDeposit, mockSig, "whsec_test")

	body := []byte(`{"correlation_key":"k","destination":"d","asset":"USD","amount":"1"}`)
	mockSig.EXPECT().Verify("whsec_test", string(body), "bad-sig").Return(false)

	c, w := depositWebhookContext(t, body, "bad-sig")
	h.HandleWebhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SEC_001", resp["error_code"])
}

func TestDepositWebhook_MissingSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDeposit := mocks.NewMockDepositService(ctrl)
	mockSig := mocks.NewMockSignatureService(ctrl)
	h := NewDepositHandler(mockDeposit, mockSig, "whsec_test")

	c, w := depositWebhookContext(t, []byte(`{}`), "")
	h.HandleWebhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDepositWebhook_DuplicateAcknowledged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDeposit := mocks.NewMockDepositService(ctrl)
	mockSig := mocks.NewMockSignatureService(ctrl)
	h := NewDepositHandler(mockDeposit, mockSig, "whsec_test")

	depositID := uuid.New()
	body, _ := json.Marshal(dto.DepositWebhookRequest{
		CorrelationKey: "prov-evt-001",
		Destination:    "alice@example.com",
		Asset:          "USD",
		Amount:         "250",
	})

	mockSig.EXPECT().Verify("whsec_test", string(body), "valid-sig").Return(true)
	mockDeposit.EXPECT().HandleNotification(gomock.Any(), gomock.Any()).Return(&ports.DepositResult{
		Deposit: &domain.Deposit{
			ID:             depositID,
			CorrelationKey: "prov-evt-001",
			Status:         domain.DepositStatusCredited,
		},
		Duplicate: true,
	}, nil)

	c, w := depositWebhookContext(t, body, "valid-sig")
	h.HandleWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["duplicate"])
}

func TestDepositWebhook_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDeposit := mocks.NewMockDepositService(ctrl)
	mockSig := mocks.NewMockSignatureService(ctrl)
	h := NewDepositHandler(mockDeposit, mockSig, "whsec_test")

	body := []byte(`{not json`)
	mockSig.EXPECT().Verify("whsec_test", string(body), "valid-sig").Return(true)

	c, w := depositWebhookContext(t, body, "valid-sig")
	h.HandleWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Reporting Handler Tests ---

func TestGetBalances_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewReportingHandler(mockReporting)

	accountID := uuid.New()
	mockReporting.EXPECT().Balances(gomock.Any(), accountID).Return([]domain.Balance{
		{AccountID: accountID, Currency: "USD", Amount: decimal.RequireFromString("100.5")},
		{AccountID: accountID, Currency: "BTC", Amount: decimal.RequireFromString("0.002")},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxAccountID, accountID)

	h.GetBalances(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "USD", first["currency"])
	assert.Equal(t, "100.5", first["amount"])
}

func TestGetStatement_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewReportingHandler(mockReporting)

	accountID := uuid.New()
	now := time.Now()

	mockReporting.EXPECT().Statement(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.StatementParams) ([]domain.LedgerEntry, int64, error) {
			assert.Equal(t, accountID, params.AccountID)
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 10, params.PageSize)
			require.NotNil(t, params.EntryType)
			assert.Equal(t, domain.EntryTypeFee, *params.EntryType)
			return []domain.LedgerEntry{
				{
					ID:          uuid.New(),
					AccountID:   accountID,
					EntryType:   domain.EntryTypeFee,
					Amount:      decimal.RequireFromString("0.54"),
					Currency:    "USD",
					Description: "transfer fee",
					CreatedAt:   now,
				},
			}, int64(11), nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2&page_size=10&entry_type=FEE", nil)
	c.Set(middleware.CtxAccountID, accountID)

	h.GetStatement(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
}

func TestGetStatement_BadTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewReportingHandler(mockReporting)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil)
	c.Set(middleware.CtxAccountID, uuid.New())

	h.GetStatement(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                 { return s.name }
func (s stubChecker) Ping(_ context.Context) error { return s.err }

func TestHealthCheck_Healthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgres"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
	)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	redis := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redis["status"])
}
