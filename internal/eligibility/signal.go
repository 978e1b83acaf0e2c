// Package eligibility decides whether a token is a tradable asset worth
// reporting. The aggregation rule (a quorum of independent boolean
// signals) is fixed here; the signals themselves are pluggable policy.
package eligibility

import "context"

// Signal is one independent boolean heuristic over a mint, such as a
// volume threshold, social-traction check, or age/liquidity check.
// Implementations may call external services and fail; a failed signal
// counts as false.
type Signal interface {
	// Name identifies the signal in logs.
	Name() string

	// Evaluate reports whether the signal holds for the mint.
	Evaluate(ctx context.Context, mint string) (bool, error)
}

// SignalFunc adapts a function to the Signal interface.
type SignalFunc struct {
	SignalName string
	Fn         func(ctx context.Context, mint string) (bool, error)
}

// Name identifies the signal.
func (s SignalFunc) Name() string {
	return s.SignalName
}

// Evaluate invokes the wrapped function.
func (s SignalFunc) Evaluate(ctx context.Context, mint string) (bool, error) {
	return s.Fn(ctx, mint)
}

// StaticSignal always reports the same value. Stands in for detectors
// whose scoring policy is supplied by the deployment.
func StaticSignal(name string, value bool) Signal {
	return SignalFunc{
		SignalName: name,
		Fn: func(context.Context, string) (bool, error) {
			return value, nil
		},
	}
}
