package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"solana-wallet-gains/internal/domain"
)

// DefaultRaydiumURL is the public Raydium API endpoint.
const DefaultRaydiumURL = "https://api-v3.raydium.io"

// RaydiumSource resolves token prices from the Raydium mint price API.
type RaydiumSource struct {
	baseURL string
	client  *http.Client
}

// NewRaydiumSource creates a Raydium price source.
func NewRaydiumSource() *RaydiumSource {
	return &RaydiumSource{
		baseURL: DefaultRaydiumURL,
		client:  &http.Client{Timeout: DefaultSourceTimeout},
	}
}

var _ Source = (*RaydiumSource)(nil)

// Name identifies the source.
func (s *RaydiumSource) Name() domain.PriceSource {
	return domain.SourceRaydium
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (s *RaydiumSource) SetBaseURL(u string) {
	s.baseURL = u
}

// FetchPrice returns the USD price for a mint or ErrNoPrice when
// Raydium has no pool for it.
func (s *RaydiumSource) FetchPrice(ctx context.Context, mint string) (float64, error) {
	u := fmt.Sprintf("%s/mint/price?mints=%s", s.baseURL, url.QueryEscape(mint))

	// Prices arrive as decimal strings keyed by mint.
	var result struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := getJSON(ctx, s.client, u, nil, &result); err != nil {
		return 0, fmt.Errorf("raydium: %w", err)
	}

	raw, ok := result.Data[mint]
	if !result.Success || !ok || raw == "" {
		return 0, ErrNoPrice
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("raydium: parse price %q: %w", raw, err)
	}
	if price <= 0 {
		return 0, ErrNoPrice
	}
	return price, nil
}
