package domain

// TokenHolding is a single token position read from the chain.
// Immutable once read; produced by the holdings source per wallet.
type TokenHolding struct {
	Mint     string  // token mint address
	UIAmount float64 // balance in UI units (decimals applied)
}
