package domain

// PriceSource identifies an external price provider.
type PriceSource string

// Known price sources, in fallback priority order.
const (
	SourceCoinGecko   PriceSource = "coingecko"
	SourceDexScreener PriceSource = "dexscreener"
	SourceRaydium     PriceSource = "raydium"
)

// QuoteRecord is a persisted row of the quote history audit trail.
// Corresponds to quote_history table in ClickHouse.
type QuoteRecord struct {
	Mint       string
	Source     PriceSource
	PriceUSD   float64
	ResolvedAt int64 // Unix timestamp in milliseconds
}
