// Package wallet validates Solana wallet addresses.
package wallet

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-wallet-gains/internal/domain"
)

// Base58-encoded 32-byte public keys are 32-44 characters long.
const (
	MinAddressLen = 32
	MaxAddressLen = 44
)

// ErrInvalidAddress is returned for any input that is not a structurally
// valid wallet address. Callers match it with errors.Is.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Validate checks that raw is a plausible Solana wallet address:
// non-empty, within base58 length bounds, decodes to exactly 32 bytes,
// and the bytes form a valid ed25519 curve point. Validation is pure;
// it is the only construction point for domain.WalletAddress.
func Validate(raw string) (domain.WalletAddress, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if len(raw) < MinAddressLen || len(raw) > MaxAddressLen {
		return "", fmt.Errorf("%w: length %d out of range", ErrInvalidAddress, len(raw))
	}

	decoded, err := base58.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: not base58", ErrInvalidAddress)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("%w: decodes to %d bytes, want 32", ErrInvalidAddress, len(decoded))
	}

	if !isOnCurve(decoded) {
		return "", fmt.Errorf("%w: not a valid ed25519 point", ErrInvalidAddress)
	}

	return domain.WalletAddress(raw), nil
}

// isOnCurve reports whether the 32 bytes decode to an ed25519 point.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
