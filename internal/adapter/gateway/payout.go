package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"remit-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Network address formats per asset. Deliberately conservative: a miss
// here rejects the withdrawal before any money moves.
var addressFormats = map[string]*regexp.Regexp{
	domain.CurrencyBTC:  regexp.MustCompile(`^(bc1[a-z0-9]{25,87}|[13][a-km-zA-HJ-NP-Z1-9]{25,34})$`),
	domain.CurrencyETH:  regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`),
	domain.CurrencyUSDT: regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`), // ERC-20
}

// PayoutGateway implements ports.PayoutGateway against a blockchain RPC
// bridge. The actual send is slow and must only ever be called from the
// job worker, never inside a database transaction.
type PayoutGateway struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewPayoutGateway creates a payout gateway.
func NewPayoutGateway(baseURL string, httpClient HTTPClient, log zerolog.Logger) *PayoutGateway {
	return &PayoutGateway{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// ValidateAddress checks the destination against the asset's network format.
func (g *PayoutGateway) ValidateAddress(asset, address string) bool {
	re, ok := addressFormats[asset]
	if !ok {
		return false
	}
	return re.MatchString(address)
}

type payoutRequest struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type payoutResponse struct {
	TxHash string `json:"tx_hash"`
}

// Send submits the payout and returns the network transaction hash.
func (g *PayoutGateway) Send(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error) {
	body, err := json.Marshal(payoutRequest{
		Asset:   asset,
		Address: address,
		Amount:  amount.String(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payouts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send payout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payout bridge returned %d", resp.StatusCode)
	}

	var out payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode payout response: %w", err)
	}
	if out.TxHash == "" {
		return "", fmt.Errorf("payout bridge returned empty tx hash")
	}

	g.log.Info().
		Str("asset", asset).
		Str("tx_hash", out.TxHash).
		Msg("payout submitted")

	return out.TxHash, nil
}
