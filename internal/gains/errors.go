package gains

// User-safe messages returned to callers. Internal diagnostics are
// wrapped, logged, and never surfaced.
const (
	MsgInvalidAddress = "Invalid wallet address"
	MsgGainsFailed    = "Failed to calculate wallet gains"
)

// WalletGainsError is the only error type CalculateGains returns.
// Message is safe to show to a caller; Err carries the internal cause.
type WalletGainsError struct {
	Message string
	Err     error
}

// Error returns the user-safe message.
func (e *WalletGainsError) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause for errors.Is/As.
func (e *WalletGainsError) Unwrap() error {
	return e.Err
}
