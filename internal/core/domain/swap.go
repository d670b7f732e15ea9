package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Swap records one currency conversion. Immutable once created.
type Swap struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	FromAsset  string          `json:"from_asset"`
	ToAsset    string          `json:"to_asset"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	// RateBase is the market rate quoted by the gateway; RateApplied is
	// RateBase with the spread shaved off the output.
	RateBase    decimal.Decimal `json:"rate_base"`
	Spread      decimal.Decimal `json:"spread"`
	RateApplied decimal.Decimal `json:"rate_applied"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ApplySpread computes the effective rate and output amount for a swap of
// amount at baseRate with the given spread, rounded to AmountPrecision.
func ApplySpread(amount, baseRate, spread decimal.Decimal) (rateApplied, toAmount decimal.Decimal) {
	rateApplied = baseRate.Mul(decimal.NewFromInt(1).Sub(spread))
	toAmount = amount.Mul(rateApplied).Round(AmountPrecision)
	return rateApplied, toAmount
}
