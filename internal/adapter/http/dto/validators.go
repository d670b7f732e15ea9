package dto

import (
	"remit-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_code", validateCurrencyCode)
		_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
	}
}

// validateCurrencyCode accepts only the platform's fixed currency set.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return domain.IsSupportedCurrency(fl.Field().String())
}

// validateDecimalAmount accepts strictly positive decimal strings. Floats
// and scientific notation are rejected before they reach the ledger.
func validateDecimalAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	for _, r := range raw {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return d.Sign() > 0
}

// ParseAmount converts a validated decimal string into a decimal.Decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}
