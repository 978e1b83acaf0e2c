// Package gains orchestrates wallet validation, holdings enumeration,
// eligibility filtering, price resolution, and cost-basis lookup into a
// per-token unrealized-gains report.
package gains

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/observability"
	"solana-wallet-gains/internal/wallet"
)

// DefaultConcurrency bounds concurrent per-holding evaluation.
const DefaultConcurrency = 8

// HoldingsSource enumerates a wallet's token positions on chain.
type HoldingsSource interface {
	GetTokenHoldings(ctx context.Context, owner domain.WalletAddress) ([]domain.TokenHolding, error)
}

// PriceOracle resolves a current unit price; 0 means no discoverable price.
type PriceOracle interface {
	GetPrice(ctx context.Context, mint string) float64
}

// EligibilityFilter decides whether a token is worth reporting.
type EligibilityFilter interface {
	IsEligible(ctx context.Context, mint string) bool
}

// CostBasisReader looks up the recorded acquisition value for
// (wallet, mint); 0 when no record exists.
type CostBasisReader interface {
	GetCostBasis(ctx context.Context, wallet, mint string) (float64, error)
}

// Calculator computes the per-token gain report for a wallet.
type Calculator struct {
	holdings    HoldingsSource
	oracle      PriceOracle
	filter      EligibilityFilter
	costBasis   CostBasisReader
	concurrency int
	metrics     *observability.Metrics // optional
	logger      *zap.Logger
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithConcurrency bounds concurrent per-holding evaluation.
func WithConcurrency(n int) CalculatorOption {
	return func(c *Calculator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMetrics enables calculator instrumentation.
func WithMetrics(m *observability.Metrics) CalculatorOption {
	return func(c *Calculator) {
		c.metrics = m
	}
}

// NewCalculator creates a gains calculator.
func NewCalculator(
	holdings HoldingsSource,
	oracle PriceOracle,
	filter EligibilityFilter,
	costBasis CostBasisReader,
	logger *zap.Logger,
	opts ...CalculatorOption,
) *Calculator {
	c := &Calculator{
		holdings:    holdings,
		oracle:      oracle,
		filter:      filter,
		costBasis:   costBasis,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateGains produces the gain report for a raw wallet address.
// Only address validation and the holdings fetch can fail the call;
// every per-holding error degrades gracefully (price 0, eligibility
// false, cost basis 0). The result order carries no meaning.
func (c *Calculator) CalculateGains(ctx context.Context, rawAddress string) ([]domain.GainResult, error) {
	addr, err := wallet.Validate(rawAddress)
	if err != nil {
		return nil, &WalletGainsError{Message: MsgInvalidAddress, Err: err}
	}

	holdings, err := c.holdings.GetTokenHoldings(ctx, addr)
	if err != nil {
		c.logger.Error("holdings fetch failed",
			zap.String("wallet", addr.String()), zap.Error(err))
		return nil, &WalletGainsError{Message: MsgGainsFailed, Err: err}
	}
	if c.metrics != nil {
		c.metrics.HoldingsPerCall.Observe(float64(len(holdings)))
	}

	// Phase one: resolve every holding concurrently into its own slot.
	// Filtering happens only after all evaluations complete, so no
	// holding is judged on an unresolved value.
	resolved := make([]*domain.GainResult, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, holding := range holdings {
		g.Go(func() error {
			if !c.filter.IsEligible(gctx, holding.Mint) {
				return nil
			}

			price := c.oracle.GetPrice(gctx, holding.Mint)

			basis, err := c.costBasis.GetCostBasis(gctx, addr.String(), holding.Mint)
			if err != nil {
				c.logger.Error("cost basis lookup failed",
					zap.String("wallet", addr.String()),
					zap.String("mint", holding.Mint),
					zap.Error(err))
				basis = 0
			}

			result := domain.NewGainResult(holding.Mint, price, holding.UIAmount, basis)
			resolved[i] = &result
			return nil
		})
	}
	// Per-holding work never returns an error; Wait only propagates
	// context cancellation.
	if err := g.Wait(); err != nil {
		return nil, &WalletGainsError{Message: MsgGainsFailed, Err: err}
	}

	// Phase two: keep eligible holdings with a discoverable value.
	results := make([]domain.GainResult, 0, len(resolved))
	for _, r := range resolved {
		if r == nil || r.TotalValue <= 0 {
			continue
		}
		results = append(results, *r)
	}

	c.logger.Info("gains calculated",
		zap.String("wallet", addr.String()),
		zap.Int("holdings", len(holdings)),
		zap.Int("reported", len(results)))
	return results, nil
}
