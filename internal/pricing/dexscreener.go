package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"solana-wallet-gains/internal/domain"
)

// DefaultDexScreenerURL is the public DexScreener API endpoint.
const DefaultDexScreenerURL = "https://api.dexscreener.com"

// DexScreenerSource resolves token prices from the DexScreener pair
// listings. The highest-liquidity pair quoting the token is used.
type DexScreenerSource struct {
	baseURL string
	client  *http.Client
}

// NewDexScreenerSource creates a DexScreener price source.
func NewDexScreenerSource() *DexScreenerSource {
	return &DexScreenerSource{
		baseURL: DefaultDexScreenerURL,
		client:  &http.Client{Timeout: DefaultSourceTimeout},
	}
}

var _ Source = (*DexScreenerSource)(nil)

// Name identifies the source.
func (s *DexScreenerSource) Name() domain.PriceSource {
	return domain.SourceDexScreener
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (s *DexScreenerSource) SetBaseURL(u string) {
	s.baseURL = u
}

// FetchPrice returns the USD price for a mint or ErrNoPrice when no
// pair lists it.
func (s *DexScreenerSource) FetchPrice(ctx context.Context, mint string) (float64, error) {
	u := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, url.PathEscape(mint))

	var result struct {
		Pairs []struct {
			PriceUSD  string `json:"priceUsd"`
			Liquidity struct {
				USD float64 `json:"usd"`
			} `json:"liquidity"`
		} `json:"pairs"`
	}
	if err := getJSON(ctx, s.client, u, nil, &result); err != nil {
		return 0, fmt.Errorf("dexscreener: %w", err)
	}

	best := 0.0
	bestLiquidity := -1.0
	for _, pair := range result.Pairs {
		price, err := strconv.ParseFloat(pair.PriceUSD, 64)
		if err != nil || price <= 0 {
			continue
		}
		if pair.Liquidity.USD > bestLiquidity {
			best = price
			bestLiquidity = pair.Liquidity.USD
		}
	}
	if best <= 0 {
		return 0, ErrNoPrice
	}
	return best, nil
}
