package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supported currency codes. The platform runs a single custodial ledger
// with a small fixed currency set; anything else is rejected up front.
const (
	CurrencyUSD  = "USD"
	CurrencyEUR  = "EUR"
	CurrencyGBP  = "GBP"
	CurrencyNGN  = "NGN"
	CurrencyBTC  = "BTC"
	CurrencyETH  = "ETH"
	CurrencyUSDT = "USDT"
)

var supportedCurrencies = map[string]struct{}{
	CurrencyUSD:  {},
	CurrencyEUR:  {},
	CurrencyGBP:  {},
	CurrencyNGN:  {},
	CurrencyBTC:  {},
	CurrencyETH:  {},
	CurrencyUSDT: {},
}

// IsSupportedCurrency reports whether code belongs to the fixed currency set.
func IsSupportedCurrency(code string) bool {
	_, ok := supportedCurrencies[code]
	return ok
}

// AmountPrecision is the fixed-point precision all balance mutations are
// rounded to before hitting the store.
const AmountPrecision = 8

// Balance is one (account, currency) row. Amount never goes negative;
// the row is created lazily on first credit and mutated only through the
// guarded debit/credit primitive.
type Balance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}
