package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_CanMoveFunds(t *testing.T) {
	tests := []struct {
		name   string
		status AccountStatus
		want   bool
	}{
		{"active", AccountStatusActive, true},
		{"frozen", AccountStatusFrozen, false},
		{"pending", AccountStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			assert.Equal(t, tt.want, a.CanMoveFunds())
		})
	}
}

func TestIsSupportedCurrency(t *testing.T) {
	for _, c := range []string{"USD", "EUR", "GBP", "NGN", "BTC", "ETH", "USDT"} {
		assert.True(t, IsSupportedCurrency(c), c)
	}
	for _, c := range []string{"usd", "DOGE", "", "US", "USDD"} {
		assert.False(t, IsSupportedCurrency(c), c)
	}
}

func TestApplySpread(t *testing.T) {
	// 100 USD at 0.92 with a 0.5% spread: 0.92 * 0.995 = 0.9154.
	rateApplied, toAmount := ApplySpread(
		decimal.RequireFromString("100"),
		decimal.RequireFromString("0.92"),
		decimal.RequireFromString("0.005"),
	)
	assert.True(t, rateApplied.Equal(decimal.RequireFromString("0.9154")))
	assert.True(t, toAmount.Equal(decimal.RequireFromString("91.54")))
}

func TestApplySpread_ZeroSpreadIsIdentity(t *testing.T) {
	rateApplied, toAmount := ApplySpread(
		decimal.RequireFromString("50"),
		decimal.RequireFromString("1.25"),
		decimal.Zero,
	)
	assert.True(t, rateApplied.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, toAmount.Equal(decimal.RequireFromString("62.5")))
}

func TestNewWithdrawJob(t *testing.T) {
	withdrawalID := uuid.New()
	now := time.Now().UTC()

	j, err := NewWithdrawJob(withdrawalID, 5, now)
	require.NoError(t, err)

	assert.Equal(t, JobTypeProcessWithdraw, j.JobType)
	assert.Equal(t, JobStatusPending, j.Status)
	assert.Equal(t, 0, j.Attempts)
	assert.Equal(t, 5, j.MaxAttempts)
	assert.Equal(t, now, j.RunAt)

	var payload WithdrawJobPayload
	require.NoError(t, json.Unmarshal(j.Payload, &payload))
	assert.Equal(t, withdrawalID, payload.WithdrawalID)
}

func TestLedgerEntryType_Constants(t *testing.T) {
	assert.Equal(t, LedgerEntryType("DEPOSIT"), EntryTypeDeposit)
	assert.Equal(t, LedgerEntryType("WITHDRAW"), EntryTypeWithdraw)
	assert.Equal(t, LedgerEntryType("DEBIT"), EntryTypeDebit)
	assert.Equal(t, LedgerEntryType("CREDIT"), EntryTypeCredit)
	assert.Equal(t, LedgerEntryType("FEE"), EntryTypeFee)
	assert.Equal(t, LedgerEntryType("EXCHANGE"), EntryTypeExchange)
}

func TestJobStatus_Constants(t *testing.T) {
	assert.Equal(t, JobStatus("PENDING"), JobStatusPending)
	assert.Equal(t, JobStatus("PROCESSING"), JobStatusProcessing)
	assert.Equal(t, JobStatus("COMPLETED"), JobStatusCompleted)
	assert.Equal(t, JobStatus("FAILED"), JobStatusFailed)
}
