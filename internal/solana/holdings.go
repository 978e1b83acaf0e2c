package solana

import (
	"context"
	"fmt"

	"solana-wallet-gains/internal/domain"
)

// HoldingsProvider exposes a wallet's SPL token balances as domain
// holdings, hiding the RPC account layout from callers.
type HoldingsProvider struct {
	rpc RPCClient
}

// NewHoldingsProvider creates a HoldingsProvider over an RPC client.
func NewHoldingsProvider(rpc RPCClient) *HoldingsProvider {
	return &HoldingsProvider{rpc: rpc}
}

// GetTokenHoldings returns every non-empty token position of the
// wallet. Multiple token accounts for the same mint are merged.
func (p *HoldingsProvider) GetTokenHoldings(ctx context.Context, owner domain.WalletAddress) ([]domain.TokenHolding, error) {
	accounts, err := p.rpc.GetTokenAccountsByOwner(ctx, owner.String())
	if err != nil {
		return nil, fmt.Errorf("get token accounts for %s: %w", owner, err)
	}

	byMint := make(map[string]float64, len(accounts))
	order := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		if acc.UIAmount <= 0 {
			continue
		}
		if _, seen := byMint[acc.Mint]; !seen {
			order = append(order, acc.Mint)
		}
		byMint[acc.Mint] += acc.UIAmount
	}

	holdings := make([]domain.TokenHolding, 0, len(order))
	for _, mint := range order {
		holdings = append(holdings, domain.TokenHolding{
			Mint:     mint,
			UIAmount: byMint[mint],
		})
	}
	return holdings, nil
}
