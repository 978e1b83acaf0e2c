package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/storage/memory"
)

// fakeSource returns a fixed price or error and counts its calls.
type fakeSource struct {
	name  domain.PriceSource
	price float64
	err   error
	calls int
}

func (f *fakeSource) Name() domain.PriceSource { return f.name }

func (f *fakeSource) FetchPrice(_ context.Context, _ string) (float64, error) {
	f.calls++
	return f.price, f.err
}

func newTestOracle(sources []Source, opts ...OracleOption) (*Oracle, *cache.TTLCache[float64]) {
	priceCache := cache.NewTTLCache[float64](time.Minute)
	return NewOracle(sources, priceCache, zap.NewNop(), opts...), priceCache
}

func TestOracle_FirstSourceWins(t *testing.T) {
	first := &fakeSource{name: domain.SourceCoinGecko, price: 1.5}
	second := &fakeSource{name: domain.SourceDexScreener, price: 99.0}
	oracle, _ := newTestOracle([]Source{first, second})

	price := oracle.GetPrice(context.Background(), "mintA")
	if price != 1.5 {
		t.Errorf("expected 1.5, got %v", price)
	}
	if second.calls != 0 {
		t.Errorf("expected fallback source untouched, got %d calls", second.calls)
	}
}

func TestOracle_FallbackOrder(t *testing.T) {
	first := &fakeSource{name: domain.SourceCoinGecko, err: errors.New("rate limited")}
	second := &fakeSource{name: domain.SourceDexScreener, err: ErrNoPrice}
	third := &fakeSource{name: domain.SourceRaydium, price: 0.25}
	oracle, _ := newTestOracle([]Source{first, second, third})

	price := oracle.GetPrice(context.Background(), "mintA")
	if price != 0.25 {
		t.Errorf("expected 0.25, got %v", price)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("expected each source tried once, got %d/%d/%d",
			first.calls, second.calls, third.calls)
	}
}

func TestOracle_NonPositivePriceFallsThrough(t *testing.T) {
	first := &fakeSource{name: domain.SourceCoinGecko, price: 0}
	second := &fakeSource{name: domain.SourceDexScreener, price: 2.0}
	oracle, _ := newTestOracle([]Source{first, second})

	price := oracle.GetPrice(context.Background(), "mintA")
	if price != 2.0 {
		t.Errorf("expected 2.0, got %v", price)
	}
}

func TestOracle_CachesResolvedPrice(t *testing.T) {
	source := &fakeSource{name: domain.SourceCoinGecko, price: 3.0}
	oracle, _ := newTestOracle([]Source{source})
	ctx := context.Background()

	oracle.GetPrice(ctx, "mintA")
	oracle.GetPrice(ctx, "mintA")

	if source.calls != 1 {
		t.Errorf("expected 1 source call across repeated lookups, got %d", source.calls)
	}
}

func TestOracle_AllFailReturnsZeroAndCachesNothing(t *testing.T) {
	source := &fakeSource{name: domain.SourceCoinGecko, err: errors.New("down")}
	oracle, priceCache := newTestOracle([]Source{source})
	ctx := context.Background()

	if price := oracle.GetPrice(ctx, "mintA"); price != 0 {
		t.Errorf("expected 0, got %v", price)
	}
	if _, ok := priceCache.Get(ctx, "mintA"); ok {
		t.Fatal("failure must not be cached")
	}

	// The next call retries the full chain.
	oracle.GetPrice(ctx, "mintA")
	if source.calls != 2 {
		t.Errorf("expected retry on second call, got %d calls", source.calls)
	}
}

func TestOracle_RecordsQuoteHistory(t *testing.T) {
	history := memory.NewQuoteHistoryStore()
	source := &fakeSource{name: domain.SourceDexScreener, price: 1.25}
	oracle, _ := newTestOracle([]Source{source}, WithQuoteHistory(history))
	ctx := context.Background()

	oracle.GetPrice(ctx, "mintA")
	oracle.GetPrice(ctx, "mintA") // cache hit, no second record

	records, err := history.GetByMint(ctx, "mintA", 10)
	if err != nil {
		t.Fatalf("GetByMint: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 quote record, got %d", len(records))
	}
	if records[0].Source != domain.SourceDexScreener {
		t.Errorf("expected source dexscreener, got %s", records[0].Source)
	}
	if records[0].PriceUSD != 1.25 {
		t.Errorf("expected price 1.25, got %v", records[0].PriceUSD)
	}
}

func TestOracle_SourceTimeout(t *testing.T) {
	slow := blockingSource{}
	fast := &fakeSource{name: domain.SourceRaydium, price: 0.5}
	oracle, _ := newTestOracle([]Source{slow, fast}, WithSourceTimeout(10*time.Millisecond))

	price := oracle.GetPrice(context.Background(), "mintA")
	if price != 0.5 {
		t.Errorf("expected slow source to be skipped, got %v", price)
	}
}

// blockingSource blocks until its context is cancelled.
type blockingSource struct{}

func (blockingSource) Name() domain.PriceSource { return domain.SourceCoinGecko }

func (blockingSource) FetchPrice(ctx context.Context, _ string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}
