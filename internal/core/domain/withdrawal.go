package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the lifecycle state of a crypto withdrawal.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "PENDING"
	WithdrawalStatusConfirmed WithdrawalStatus = "CONFIRMED"
	WithdrawalStatusFailed    WithdrawalStatus = "FAILED"
)

// Withdrawal is created together with the debit; only the async payout
// worker mutates it afterwards. A FAILED withdrawal carries exactly one
// compensating credit, guarded by CompensatedAt.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	Asset         string           `json:"asset"`
	Amount        decimal.Decimal  `json:"amount"`
	Address       string           `json:"address"`
	Status        WithdrawalStatus `json:"status"`
	TxHash        *string          `json:"tx_hash,omitempty"`
	CompensatedAt *time.Time       `json:"compensated_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
