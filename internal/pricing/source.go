// Package pricing resolves current token prices from external sources
// with caching and ordered fallback.
package pricing

import (
	"context"
	"errors"

	"solana-wallet-gains/internal/domain"
)

// ErrNoPrice is returned by a source that answered but has no positive
// price for the mint. The oracle treats it like any other source failure.
var ErrNoPrice = errors.New("no price available")

// Source is a single external price provider. Each source is
// independently callable and independently failable.
type Source interface {
	// Name identifies the source in logs and quote history.
	Name() domain.PriceSource

	// FetchPrice returns the current unit price in USD for a mint.
	// A source that cannot find the token returns ErrNoPrice.
	FetchPrice(ctx context.Context, mint string) (float64, error)
}
