package domain

// WalletAddress is a structurally validated Solana wallet address.
// Construct it through wallet.Validate; code holding a WalletAddress
// may assume it decodes to a 32-byte ed25519 public key.
type WalletAddress string

// String returns the base58 form of the address.
func (a WalletAddress) String() string {
	return string(a)
}
