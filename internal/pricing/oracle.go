package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/observability"
	"solana-wallet-gains/internal/storage"
)

// Oracle resolves a current unit price for a mint. Sources are tried in
// fixed priority order; the first positive price wins and is cached.
// The oracle never fails: when every source fails or returns a
// non-positive price it degrades to 0, which downstream filtering
// interprets as "no discoverable price".
type Oracle struct {
	sources []Source
	cache   cache.Cache[float64]
	history storage.QuoteHistoryStore // optional audit trail
	metrics *observability.Metrics    // optional
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithQuoteHistory enables the resolved-quote audit trail.
func WithQuoteHistory(store storage.QuoteHistoryStore) OracleOption {
	return func(o *Oracle) {
		o.history = store
	}
}

// WithSourceTimeout bounds each individual source call.
func WithSourceTimeout(d time.Duration) OracleOption {
	return func(o *Oracle) {
		o.timeout = d
	}
}

// WithMetrics enables oracle instrumentation.
func WithMetrics(m *observability.Metrics) OracleOption {
	return func(o *Oracle) {
		o.metrics = m
	}
}

// NewOracle creates a price oracle over the given sources, consulted in
// slice order.
func NewOracle(sources []Source, priceCache cache.Cache[float64], logger *zap.Logger, opts ...OracleOption) *Oracle {
	o := &Oracle{
		sources: sources,
		cache:   priceCache,
		timeout: DefaultSourceTimeout,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetPrice returns the current USD price for a mint, or 0 when no
// source can price it. Fresh resolutions are cached under the price TTL
// and recorded to the quote history when one is configured.
func (o *Oracle) GetPrice(ctx context.Context, mint string) float64 {
	if price, ok := o.cache.Get(ctx, mint); ok {
		if o.metrics != nil {
			o.metrics.PriceCacheHits.Inc()
		}
		return price
	}
	o.logger.Debug("price cache miss", zap.String("mint", mint))
	if o.metrics != nil {
		o.metrics.PriceCacheMisses.Inc()
	}

	for _, source := range o.sources {
		price, err := o.fetchOne(ctx, source, mint)
		if err != nil {
			o.logger.Warn("price source failed",
				zap.String("mint", mint),
				zap.String("source", string(source.Name())),
				zap.Error(err))
			o.countSource(source, "error")
			continue
		}
		if price <= 0 {
			o.logger.Warn("price source returned non-positive price",
				zap.String("mint", mint),
				zap.String("source", string(source.Name())))
			o.countSource(source, "empty")
			continue
		}
		o.countSource(source, "ok")

		o.cache.Set(ctx, mint, price)
		o.record(ctx, mint, source.Name(), price)
		return price
	}

	// Nothing is cached on total failure; the next call retries the
	// full chain.
	o.logger.Info("no price found from any source", zap.String("mint", mint))
	if o.metrics != nil {
		o.metrics.PricesUnresolved.Inc()
	}
	return 0
}

func (o *Oracle) countSource(source Source, outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.PriceSourceCalls.WithLabelValues(string(source.Name()), outcome).Inc()
}

// fetchOne calls a single source under its own timeout.
func (o *Oracle) fetchOne(ctx context.Context, source Source, mint string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return source.FetchPrice(ctx, mint)
}

// record appends the resolved quote to the audit trail, best-effort.
func (o *Oracle) record(ctx context.Context, mint string, source domain.PriceSource, price float64) {
	if o.history == nil {
		return
	}
	err := o.history.Insert(ctx, &domain.QuoteRecord{
		Mint:       mint,
		Source:     source,
		PriceUSD:   price,
		ResolvedAt: o.now().UnixMilli(),
	})
	if err != nil {
		o.logger.Warn("quote history insert failed",
			zap.String("mint", mint), zap.Error(err))
	}
}
