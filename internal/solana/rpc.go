package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetTokenAccountsByOwner retrieves all SPL token accounts owned by
	// a wallet, parsed into token accounts.
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]TokenAccount, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
