package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/storage"
)

// QuoteHistoryStore is an in-memory implementation of storage.QuoteHistoryStore.
type QuoteHistoryStore struct {
	mu      sync.RWMutex
	records map[string][]*domain.QuoteRecord // keyed by mint
}

// NewQuoteHistoryStore creates a new in-memory quote history store.
func NewQuoteHistoryStore() *QuoteHistoryStore {
	return &QuoteHistoryStore{
		records: make(map[string][]*domain.QuoteRecord),
	}
}

var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)

// EnsureInitialized is a no-op for the in-memory store.
func (s *QuoteHistoryStore) EnsureInitialized(_ context.Context) error {
	return nil
}

// Insert appends a resolved quote.
func (s *QuoteHistoryStore) Insert(_ context.Context, q *domain.QuoteRecord) error {
	if q == nil || q.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quoteCopy := *q
	s.records[q.Mint] = append(s.records[q.Mint], &quoteCopy)
	return nil
}

// GetByMint retrieves the most recent quotes for a mint, newest first.
func (s *QuoteHistoryStore) GetByMint(_ context.Context, mint string, limit int) ([]*domain.QuoteRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[mint]
	result := make([]*domain.QuoteRecord, len(stored))
	for i, q := range stored {
		quoteCopy := *q
		result[i] = &quoteCopy
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ResolvedAt > result[j].ResolvedAt
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
