package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of a P2P transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// Transfer records one peer-to-peer movement. It is created in the same
// transaction as the balance mutations; a failed debit aborts the whole
// unit so a Transfer row never exists without its balance effects.
type Transfer struct {
	ID               uuid.UUID       `json:"id"`
	SenderID         uuid.UUID       `json:"sender_id"`
	RecipientID      uuid.UUID       `json:"recipient_id"`
	AmountSent       decimal.Decimal `json:"amount_sent"`
	CurrencySent     string          `json:"currency_sent"`
	AmountReceived   decimal.Decimal `json:"amount_received"`
	CurrencyReceived string          `json:"currency_received"`
	Fee              decimal.Decimal `json:"fee"`
	FeePercentage    decimal.Decimal `json:"fee_percentage"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	Status           TransferStatus  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}
