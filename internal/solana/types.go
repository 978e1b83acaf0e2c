package solana

// TokenProgramID is the SPL token program.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// TokenAccount is a parsed SPL token account from getTokenAccountsByOwner.
type TokenAccount struct {
	Pubkey   string  // token account address
	Mint     string  // token mint address
	UIAmount float64 // balance in UI units (decimals applied)
	Decimals int
}

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}
