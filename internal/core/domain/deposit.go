package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositStatus represents the outcome of an external deposit notification.
type DepositStatus string

const (
	// DepositStatusCredited means the destination balance was credited.
	DepositStatusCredited DepositStatus = "CREDITED"
	// DepositStatusParked means the destination could not be resolved; the
	// event is kept for manual review instead of being dropped.
	DepositStatusParked DepositStatus = "PARKED"
)

// Deposit records one external crediting event. CorrelationKey is the
// unique idempotency key (payment session id or on-chain tx hash); a
// uniqueness constraint on it is what makes replays credit exactly once.
type Deposit struct {
	ID             uuid.UUID       `json:"id"`
	CorrelationKey string          `json:"correlation_key"`
	AccountID      *uuid.UUID      `json:"account_id,omitempty"`
	Destination    string          `json:"destination"`
	Asset          string          `json:"asset"`
	Amount         decimal.Decimal `json:"amount"`
	Status         DepositStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
