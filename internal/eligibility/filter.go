package eligibility

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
)

// Quorum is the number of signals that must hold for a token to be
// eligible.
const Quorum = 2

// Filter evaluates token eligibility with cached multi-signal
// aggregation. It never fails; internal errors degrade to false.
type Filter struct {
	signals []Signal
	cache   cache.Cache[bool]
	logger  *zap.Logger
}

// NewFilter creates a Filter over the given signals. Results are cached
// in metadataCache under the metadata TTL.
func NewFilter(signals []Signal, metadataCache cache.Cache[bool], logger *zap.Logger) *Filter {
	return &Filter{
		signals: signals,
		cache:   metadataCache,
		logger:  logger,
	}
}

// IsEligible reports whether the mint is worth reporting: at least
// Quorum of the signals must hold. The outcome is cached; a repeated
// call within the TTL does not re-evaluate signals.
func (f *Filter) IsEligible(ctx context.Context, mint string) bool {
	if eligible, ok := f.cache.Get(ctx, mint); ok {
		return eligible
	}
	f.logger.Debug("eligibility cache miss", zap.String("mint", mint))

	// Resolve every signal before aggregating: each evaluation runs
	// concurrently and lands in its own slot.
	results := make([]bool, len(f.signals))
	var wg sync.WaitGroup
	for i, signal := range f.signals {
		wg.Add(1)
		go func(i int, signal Signal) {
			defer wg.Done()
			ok, err := signal.Evaluate(ctx, mint)
			if err != nil {
				f.logger.Warn("eligibility signal failed",
					zap.String("mint", mint),
					zap.String("signal", signal.Name()),
					zap.Error(err))
				return
			}
			results[i] = ok
		}(i, signal)
	}
	wg.Wait()

	positive := 0
	for _, ok := range results {
		if ok {
			positive++
		}
	}
	eligible := positive >= Quorum

	f.cache.Set(ctx, mint, eligible)
	return eligible
}
