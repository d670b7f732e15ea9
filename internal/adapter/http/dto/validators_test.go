package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountProbe struct {
	Amount string `binding:"decimal_amount"`
}

type currencyProbe struct {
	Currency string `binding:"currency_code"`
}

func validate(t *testing.T, v any) error {
	t.Helper()
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return engine.Struct(v)
}

func TestValidateDecimalAmount(t *testing.T) {
	valid := []string{"1", "0.5", "0.00000001", "1530.25", "10"}
	for _, s := range valid {
		assert.NoError(t, validate(t, amountProbe{Amount: s}), s)
	}

	invalid := []string{"0", "-1", "1e5", "0x10", "1,5", "abc", "", "  1", "+1"}
	for _, s := range invalid {
		assert.Error(t, validate(t, amountProbe{Amount: s}), s)
	}
}

func TestValidateCurrencyCode(t *testing.T) {
	valid := []string{"USD", "EUR", "GBP", "NGN", "BTC", "ETH", "USDT"}
	for _, s := range valid {
		assert.NoError(t, validate(t, currencyProbe{Currency: s}), s)
	}

	invalid := []string{"usd", "DOGE", "US", "", "USDD"}
	for _, s := range invalid {
		assert.Error(t, validate(t, currencyProbe{Currency: s}), s)
	}
}
