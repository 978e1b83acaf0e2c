package domain

// GainResult is the per-token unrealized gain report entry.
// Derived per request, never persisted.
type GainResult struct {
	Mint           string  `json:"mint"`
	CurrentPrice   float64 `json:"currentPrice"`
	Amount         float64 `json:"amount"`
	CostBasis      float64 `json:"costBasis"`
	TotalValue     float64 `json:"totalValue"`
	UnrealizedGain float64 `json:"unrealizedGain"`
}

// NewGainResult builds a GainResult with the derived fields filled in:
// TotalValue = price * amount, UnrealizedGain = TotalValue - costBasis.
func NewGainResult(mint string, price, amount, costBasis float64) GainResult {
	total := price * amount
	return GainResult{
		Mint:           mint,
		CurrentPrice:   price,
		Amount:         amount,
		CostBasis:      costBasis,
		TotalValue:     total,
		UnrealizedGain: total - costBasis,
	}
}
