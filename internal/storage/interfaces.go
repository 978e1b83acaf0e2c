package storage

import (
	"context"

	"solana-wallet-gains/internal/domain"
)

// CostBasisStore provides access to the persisted cost_basis mapping.
// Reads are keyed by (wallet, mint); a missing record is not an error.
type CostBasisStore interface {
	// EnsureInitialized lazily creates the backing store if it does not
	// exist yet. Safe to call more than once.
	EnsureInitialized(ctx context.Context) error

	// GetCostBasis returns the recorded acquisition value for the pair,
	// or 0 when no record exists.
	GetCostBasis(ctx context.Context, wallet, mint string) (float64, error)

	// Put records or replaces the cost basis for (wallet, mint).
	// Used by the ingestion path, never by the gains calculator.
	Put(ctx context.Context, rec *domain.CostBasisRecord) error
}

// QuoteHistoryStore records every freshly resolved price quote for
// auditing. Writers treat it as best-effort: insert failures are logged
// and never propagated.
type QuoteHistoryStore interface {
	// EnsureInitialized lazily creates the backing table if it does not
	// exist yet. Safe to call more than once.
	EnsureInitialized(ctx context.Context) error

	// Insert appends a resolved quote.
	Insert(ctx context.Context, q *domain.QuoteRecord) error

	// GetByMint retrieves the most recent quotes for a mint, newest
	// first, at most limit rows.
	GetByMint(ctx context.Context, mint string, limit int) ([]*domain.QuoteRecord, error)
}
