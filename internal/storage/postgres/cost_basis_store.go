package postgres

import (
	"context"
	"fmt"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/storage"
)

// CostBasisStore implements storage.CostBasisStore using PostgreSQL.
type CostBasisStore struct {
	pool *Pool
}

// NewCostBasisStore creates a new CostBasisStore.
func NewCostBasisStore(pool *Pool) *CostBasisStore {
	return &CostBasisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CostBasisStore = (*CostBasisStore)(nil)

// EnsureInitialized creates the cost_basis table if it does not exist.
func (s *CostBasisStore) EnsureInitialized(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS cost_basis (
			wallet_address TEXT NOT NULL,
			mint           TEXT NOT NULL,
			cost_usd       DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at     BIGINT NOT NULL,
			PRIMARY KEY (wallet_address, mint)
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("initialize cost_basis table: %w", err)
	}
	return nil
}

// GetCostBasis returns the recorded acquisition value for (wallet, mint),
// or 0 when no record exists. Absence is never an error.
func (s *CostBasisStore) GetCostBasis(ctx context.Context, wallet, mint string) (float64, error) {
	query := `
		SELECT cost_usd
		FROM cost_basis
		WHERE wallet_address = $1 AND mint = $2
	`

	var cost float64
	err := s.pool.QueryRow(ctx, query, wallet, mint).Scan(&cost)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get cost basis: %w", err)
	}
	return cost, nil
}

// Put records or replaces the cost basis for (wallet, mint).
func (s *CostBasisStore) Put(ctx context.Context, rec *domain.CostBasisRecord) error {
	if rec == nil || rec.WalletAddress == "" || rec.Mint == "" {
		return storage.ErrInvalidInput
	}
	if rec.CostUSD < 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO cost_basis (wallet_address, mint, cost_usd, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_address, mint)
		DO UPDATE SET cost_usd = EXCLUDED.cost_usd, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, rec.WalletAddress, rec.Mint, rec.CostUSD, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put cost basis: %w", err)
	}
	return nil
}
