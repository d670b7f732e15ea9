package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"remit-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateGateway implements ports.RateGateway. Resolution order: redis cache,
// live HTTP source, static fallback table.
type RateGateway struct {
	baseURL    string
	httpClient HTTPClient
	cache      ports.RateCache
	cacheTTL   time.Duration
	fallback   map[string]decimal.Decimal
	log        zerolog.Logger
}

// NewRateGateway creates a rate gateway. baseURL may be empty, in which
// case only the fallback table serves rates.
func NewRateGateway(baseURL string, httpClient HTTPClient, cache ports.RateCache, cacheTTL time.Duration, log zerolog.Logger) *RateGateway {
	return &RateGateway{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
		fallback:   staticFallbackRates(),
		log:        log,
	}
}

// staticFallbackRates seeds the last-resort table. Rates are stale by
// definition; they exist so swaps degrade rather than hard-fail when the
// live source is down.
func staticFallbackRates() map[string]decimal.Decimal {
	raw := map[string]string{
		"USD/EUR":  "0.92",
		"USD/GBP":  "0.79",
		"USD/NGN":  "1530",
		"BTC/USD":  "65000",
		"ETH/USD":  "3400",
		"USDT/USD": "1",
		"BTC/USDT": "65000",
		"ETH/USDT": "3400",
	}
	table := make(map[string]decimal.Decimal, len(raw)*2)
	for pair, v := range raw {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			panic(fmt.Sprintf("bad fallback rate %s=%s", pair, v))
		}
		table[pair] = rate
		// Derive the inverse so both directions are always quotable.
		parts := strings.SplitN(pair, "/", 2)
		table[parts[1]+"/"+parts[0]] = decimal.NewFromInt(1).DivRound(rate, 12)
	}
	return table
}

// GetRate resolves the rate for from->to, failing closed with
// ErrUnknownPair when no source knows the pair.
func (g *RateGateway) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	pair := from + "/" + to

	if g.cache != nil {
		if rate, ok, err := g.cache.Get(ctx, pair); err != nil {
			g.log.Warn().Err(err).Str("pair", pair).Msg("rate cache read failed, falling through")
		} else if ok {
			return rate, nil
		}
	}

	if rate, err := g.fetchLive(ctx, from, to); err == nil {
		if g.cache != nil {
			if err := g.cache.Set(ctx, pair, rate, g.cacheTTL); err != nil {
				g.log.Warn().Err(err).Str("pair", pair).Msg("rate cache write failed")
			}
		}
		return rate, nil
	} else if g.baseURL != "" {
		g.log.Warn().Err(err).Str("pair", pair).Msg("live rate source failed, using fallback table")
	}

	if rate, ok := g.fallback[pair]; ok {
		return rate, nil
	}
	return decimal.Zero, ports.ErrUnknownPair
}

// rateResponse is the live source's wire format.
type rateResponse struct {
	Rate string `json:"rate"`
}

func (g *RateGateway) fetchLive(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if g.baseURL == "" {
		return decimal.Zero, fmt.Errorf("live source disabled")
	}

	url := fmt.Sprintf("%s/rates?from=%s&to=%s", g.baseURL, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate source returned %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate response: %w", err)
	}

	rate, err := decimal.NewFromString(body.Rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", body.Rate, err)
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive rate %s", rate)
	}
	return rate, nil
}
