package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoutGateway_ValidateAddress(t *testing.T) {
	gw := NewPayoutGateway("http://bridge.local", nil, zerolog.Nop())

	tests := []struct {
		name    string
		asset   string
		address string
		want    bool
	}{
		{"btc bech32", "BTC", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
		{"btc legacy", "BTC", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", true},
		{"btc garbage", "BTC", "not-an-address", false},
		{"eth checksummed", "ETH", "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{"eth too short", "ETH", "0x5290840009852788", false},
		{"usdt is erc20", "USDT", "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{"eth address on btc network", "BTC", "0x52908400098527886E0F7030069857D2E4169EE7", false},
		{"fiat has no network", "USD", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", false},
		{"empty", "BTC", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gw.ValidateAddress(tt.asset, tt.address))
		})
	}
}

func TestPayoutGateway_Send(t *testing.T) {
	client := &fakeHTTPClient{resp: jsonResponse(201, `{"tx_hash":"0xdeadbeef"}`)}
	gw := NewPayoutGateway("http://bridge.local", client, zerolog.Nop())

	hash, err := gw.Send(context.Background(), "ETH", "0x52908400098527886E0F7030069857D2E4169EE7", decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", hash)
}

func TestPayoutGateway_Send_BridgeError(t *testing.T) {
	client := &fakeHTTPClient{resp: jsonResponse(502, `{"error":"upstream"}`)}
	gw := NewPayoutGateway("http://bridge.local", client, zerolog.Nop())

	_, err := gw.Send(context.Background(), "ETH", "0x52908400098527886E0F7030069857D2E4169EE7", decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPayoutGateway_Send_NetworkError(t *testing.T) {
	client := &fakeHTTPClient{err: errors.New("connection reset")}
	gw := NewPayoutGateway("http://bridge.local", client, zerolog.Nop())

	_, err := gw.Send(context.Background(), "BTC", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestPayoutGateway_Send_EmptyTxHash(t *testing.T) {
	client := &fakeHTTPClient{resp: jsonResponse(200, `{}`)}
	gw := NewPayoutGateway("http://bridge.local", client, zerolog.Nop())

	_, err := gw.Send(context.Background(), "BTC", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty tx hash")
}
