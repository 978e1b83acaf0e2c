// Package stub provides in-memory RPC doubles for tests.
package stub

import (
	"context"
	"errors"

	"solana-wallet-gains/internal/solana"
)

// ErrUnavailable simulates a transport failure.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Accounts   map[string][]solana.TokenAccount
	Signatures map[string][]solana.SignatureInfo

	// Fail forces every call to return ErrUnavailable.
	Fail bool

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:   make(map[string][]solana.TokenAccount),
		Signatures: make(map[string][]solana.SignatureInfo),
		Calls:      make(map[string]int),
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner string) ([]solana.TokenAccount, error) {
	c.Calls["getTokenAccountsByOwner"]++
	if c.Fail {
		return nil, ErrUnavailable
	}
	return c.Accounts[owner], nil
}

// GetSignaturesForAddress retrieves signatures from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.Calls["getSignaturesForAddress"]++
	if c.Fail {
		return nil, ErrUnavailable
	}
	sigs := c.Signatures[address]
	if opts != nil && opts.Limit > 0 && len(sigs) > opts.Limit {
		sigs = sigs[:opts.Limit]
	}
	return sigs, nil
}
