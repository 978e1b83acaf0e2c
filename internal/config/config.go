// Package config holds the typed runtime configuration. Values come
// from flags with environment-variable defaults; cmd binaries own the
// flag parsing.
package config

import (
	"fmt"
	"time"

	"solana-wallet-gains/internal/cache"
)

// Config is the full configuration surface of the service.
type Config struct {
	// Chain access
	RPCEndpoint string
	WSEndpoint  string // optional; enables the account watcher

	// Storage
	PostgresDSN   string // empty selects the in-memory cost basis store
	ClickhouseDSN string // empty disables the quote history audit trail
	RedisURL      string // empty selects in-memory caches

	// Price sources
	CoinGeckoAPIKey string

	// Cache TTLs per category
	PriceTTL       time.Duration
	MetadataTTL    time.Duration
	TransactionTTL time.Duration

	// HTTP server
	ListenAddr string

	// Logging
	LogLevel string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		PriceTTL:       cache.DefaultPriceTTL,
		MetadataTTL:    cache.DefaultMetadataTTL,
		TransactionTTL: cache.DefaultTransactionTTL,
		ListenAddr:     ":8080",
		LogLevel:       "info",
	}
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("rpc endpoint is required")
	}
	if c.PriceTTL <= 0 || c.MetadataTTL <= 0 || c.TransactionTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}
