package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-wallet-gains/internal/cache"
)

// Default thresholds for the market-data signals.
const (
	DefaultMinLiquidityUSD = 5_000.0
	DefaultMinVolume24hUSD = 1_000.0
	DefaultMinPairAge      = 24 * time.Hour
)

// marketStats is the per-mint snapshot the signals share. One fetch
// serves all three signals for the snapshot TTL.
type marketStats struct {
	LiquidityUSD float64
	Volume24hUSD float64
	OldestPairAt time.Time
	Listed       bool
}

// MarketSignals derives eligibility signals from DEX pair listings.
type MarketSignals struct {
	baseURL   string
	client    *http.Client
	snapshots cache.Cache[marketStats]
	now       func() time.Time
}

// NewMarketSignals creates a signal provider backed by the DexScreener
// pair listings. snapshotTTL bounds how long one fetch serves repeated
// signal evaluations for the same mint.
func NewMarketSignals(baseURL string, snapshotTTL time.Duration) *MarketSignals {
	return &MarketSignals{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 5 * time.Second},
		snapshots: cache.NewTTLCache[marketStats](snapshotTTL),
		now:       time.Now,
	}
}

// Liquidity reports whether the token's best pair holds at least
// minUSD of liquidity.
func (m *MarketSignals) Liquidity(minUSD float64) Signal {
	return SignalFunc{
		SignalName: "liquidity",
		Fn: func(ctx context.Context, mint string) (bool, error) {
			stats, err := m.stats(ctx, mint)
			if err != nil {
				return false, err
			}
			return stats.Listed && stats.LiquidityUSD >= minUSD, nil
		},
	}
}

// Volume reports whether the token traded at least minUSD over the
// last 24 hours.
func (m *MarketSignals) Volume(minUSD float64) Signal {
	return SignalFunc{
		SignalName: "volume_24h",
		Fn: func(ctx context.Context, mint string) (bool, error) {
			stats, err := m.stats(ctx, mint)
			if err != nil {
				return false, err
			}
			return stats.Listed && stats.Volume24hUSD >= minUSD, nil
		},
	}
}

// Age reports whether the token's oldest pair has existed for at least
// minAge. Fresh pairs are a rug-pull tell.
func (m *MarketSignals) Age(minAge time.Duration) Signal {
	return SignalFunc{
		SignalName: "pair_age",
		Fn: func(ctx context.Context, mint string) (bool, error) {
			stats, err := m.stats(ctx, mint)
			if err != nil {
				return false, err
			}
			if !stats.Listed || stats.OldestPairAt.IsZero() {
				return false, nil
			}
			return m.now().Sub(stats.OldestPairAt) >= minAge, nil
		},
	}
}

func (m *MarketSignals) stats(ctx context.Context, mint string) (marketStats, error) {
	if stats, ok := m.snapshots.Get(ctx, mint); ok {
		return stats, nil
	}

	u := fmt.Sprintf("%s/latest/dex/tokens/%s", m.baseURL, url.PathEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return marketStats{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return marketStats{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return marketStats{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return marketStats{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Pairs []struct {
			Liquidity struct {
				USD float64 `json:"usd"`
			} `json:"liquidity"`
			Volume struct {
				H24 float64 `json:"h24"`
			} `json:"volume"`
			PairCreatedAt int64 `json:"pairCreatedAt"` // unix ms
		} `json:"pairs"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return marketStats{}, fmt.Errorf("unmarshal response: %w", err)
	}

	stats := marketStats{Listed: len(result.Pairs) > 0}
	for _, pair := range result.Pairs {
		if pair.Liquidity.USD > stats.LiquidityUSD {
			stats.LiquidityUSD = pair.Liquidity.USD
		}
		stats.Volume24hUSD += pair.Volume.H24
		if pair.PairCreatedAt > 0 {
			created := time.UnixMilli(pair.PairCreatedAt)
			if stats.OldestPairAt.IsZero() || created.Before(stats.OldestPairAt) {
				stats.OldestPairAt = created
			}
		}
	}

	m.snapshots.Set(ctx, mint, stats)
	return stats, nil
}
