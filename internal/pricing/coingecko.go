package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"solana-wallet-gains/internal/domain"
)

// DefaultCoinGeckoURL is the public CoinGecko API endpoint.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoSource resolves token prices via the CoinGecko
// simple/token_price endpoint for the Solana platform.
type CoinGeckoSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCoinGeckoSource creates a CoinGecko price source. apiKey may be
// empty for the public rate-limited tier.
func NewCoinGeckoSource(apiKey string) *CoinGeckoSource {
	return &CoinGeckoSource{
		baseURL: DefaultCoinGeckoURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultSourceTimeout},
	}
}

var _ Source = (*CoinGeckoSource)(nil)

// Name identifies the source.
func (s *CoinGeckoSource) Name() domain.PriceSource {
	return domain.SourceCoinGecko
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (s *CoinGeckoSource) SetBaseURL(u string) {
	s.baseURL = u
}

// FetchPrice returns the USD price for a mint or ErrNoPrice when
// CoinGecko does not track the token.
func (s *CoinGeckoSource) FetchPrice(ctx context.Context, mint string) (float64, error) {
	u := fmt.Sprintf("%s/simple/token_price/solana?contract_addresses=%s&vs_currencies=usd",
		s.baseURL, url.QueryEscape(mint))

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["x-cg-demo-api-key"] = s.apiKey
	}

	// Response is keyed by lowercased contract address.
	var result map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := getJSON(ctx, s.client, u, headers, &result); err != nil {
		return 0, fmt.Errorf("coingecko: %w", err)
	}

	entry, ok := result[strings.ToLower(mint)]
	if !ok {
		entry, ok = result[mint]
	}
	if !ok || entry.USD <= 0 {
		return 0, ErrNoPrice
	}
	return entry.USD, nil
}
