package domain

// CostBasisRecord maps (wallet, mint) to the recorded acquisition value.
// Corresponds to cost_basis table in PostgreSQL.
type CostBasisRecord struct {
	WalletAddress string
	Mint          string
	CostUSD       float64 // acquisition value, always >= 0
	UpdatedAt     int64   // Unix timestamp in milliseconds
}
