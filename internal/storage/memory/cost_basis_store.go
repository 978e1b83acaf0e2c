package memory

import (
	"context"
	"sync"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/storage"
)

// CostBasisStore is an in-memory implementation of storage.CostBasisStore.
type CostBasisStore struct {
	mu      sync.RWMutex
	records map[string]float64 // keyed by wallet|mint
}

// NewCostBasisStore creates a new in-memory cost basis store.
func NewCostBasisStore() *CostBasisStore {
	return &CostBasisStore{
		records: make(map[string]float64),
	}
}

var _ storage.CostBasisStore = (*CostBasisStore)(nil)

func costBasisKey(wallet, mint string) string {
	return wallet + "|" + mint
}

// EnsureInitialized is a no-op for the in-memory store.
func (s *CostBasisStore) EnsureInitialized(_ context.Context) error {
	return nil
}

// GetCostBasis returns the recorded acquisition value for (wallet, mint),
// or 0 when no record exists.
func (s *CostBasisStore) GetCostBasis(_ context.Context, wallet, mint string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records[costBasisKey(wallet, mint)], nil
}

// Put records or replaces the cost basis for (wallet, mint).
func (s *CostBasisStore) Put(_ context.Context, rec *domain.CostBasisRecord) error {
	if rec == nil || rec.WalletAddress == "" || rec.Mint == "" {
		return storage.ErrInvalidInput
	}
	if rec.CostUSD < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[costBasisKey(rec.WalletAddress, rec.Mint)] = rec.CostUSD
	return nil
}
