package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/storage"
)

// QuoteHistoryStore implements storage.QuoteHistoryStore using ClickHouse.
type QuoteHistoryStore struct {
	conn *Conn
}

// NewQuoteHistoryStore creates a new QuoteHistoryStore.
func NewQuoteHistoryStore(conn *Conn) *QuoteHistoryStore {
	return &QuoteHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)

// EnsureInitialized creates the quote_history table if it does not exist.
func (s *QuoteHistoryStore) EnsureInitialized(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS quote_history (
			mint            String,
			source          String,
			price_usd       Float64,
			resolved_at_ms  UInt64
		) ENGINE = MergeTree()
		ORDER BY (mint, resolved_at_ms)
		SETTINGS index_granularity = 8192
	`
	if err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("initialize quote_history table: %w", err)
	}
	return nil
}

// Insert appends a resolved quote.
func (s *QuoteHistoryStore) Insert(ctx context.Context, q *domain.QuoteRecord) error {
	if q == nil || q.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO quote_history (mint, source, price_usd, resolved_at_ms)
		VALUES (?, ?, ?, ?)
	`
	if err := s.conn.Exec(ctx, query, q.Mint, string(q.Source), q.PriceUSD, uint64(q.ResolvedAt)); err != nil {
		return fmt.Errorf("insert quote record: %w", err)
	}
	return nil
}

// GetByMint retrieves the most recent quotes for a mint, newest first.
func (s *QuoteHistoryStore) GetByMint(ctx context.Context, mint string, limit int) ([]*domain.QuoteRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT mint, source, price_usd, resolved_at_ms
		FROM quote_history
		WHERE mint = ?
		ORDER BY resolved_at_ms DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, mint, limit)
	if err != nil {
		return nil, fmt.Errorf("query quote history: %w", err)
	}
	defer rows.Close()

	var records []*domain.QuoteRecord
	for rows.Next() {
		var (
			q          domain.QuoteRecord
			source     string
			resolvedAt uint64
		)
		if err := rows.Scan(&q.Mint, &source, &q.PriceUSD, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan quote record: %w", err)
		}
		q.Source = domain.PriceSource(source)
		q.ResolvedAt = int64(resolvedAt)
		records = append(records, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote history: %w", err)
	}

	return records, nil
}
