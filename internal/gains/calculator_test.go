package gains

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"reflect"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"solana-wallet-gains/internal/domain"
)

type fakeHoldings struct {
	holdings []domain.TokenHolding
	err      error
	calls    atomic.Int64
}

func (f *fakeHoldings) GetTokenHoldings(_ context.Context, _ domain.WalletAddress) ([]domain.TokenHolding, error) {
	f.calls.Add(1)
	return f.holdings, f.err
}

type fakeOracle struct {
	prices map[string]float64
}

func (f *fakeOracle) GetPrice(_ context.Context, mint string) float64 {
	return f.prices[mint]
}

type fakeFilter struct {
	eligible map[string]bool
	calls    atomic.Int64
}

func (f *fakeFilter) IsEligible(_ context.Context, mint string) bool {
	f.calls.Add(1)
	return f.eligible[mint]
}

type fakeCostBasis struct {
	basis map[string]float64
	err   error
}

func (f *fakeCostBasis) GetCostBasis(_ context.Context, _, mint string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.basis[mint], nil
}

func testWallet(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base58.Encode(pub)
}

func TestCalculator_ReportsEligiblePricedHoldings(t *testing.T) {
	holdings := &fakeHoldings{holdings: []domain.TokenHolding{
		{Mint: "mintA", UIAmount: 10},
		{Mint: "mintB", UIAmount: 3},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"mintA": 2.0, "mintB": 5.0}}
	filter := &fakeFilter{eligible: map[string]bool{"mintA": true, "mintB": true}}
	costBasis := &fakeCostBasis{basis: map[string]float64{"mintA": 5.0}}

	calc := NewCalculator(holdings, oracle, filter, costBasis, zap.NewNop())
	address := testWallet(t)
	results, err := calc.CalculateGains(context.Background(), address)
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Mint < results[j].Mint })

	a := results[0]
	if a.Mint != "mintA" || a.TotalValue != 20.0 || a.UnrealizedGain != 15.0 {
		t.Errorf("mintA: unexpected result %+v", a)
	}
	b := results[1]
	if b.Mint != "mintB" || b.TotalValue != 15.0 || b.UnrealizedGain != 15.0 {
		t.Errorf("mintB: unexpected result %+v", b)
	}

	// Repeating the calculation for the same wallet yields the same
	// report.
	again, err := calc.CalculateGains(context.Background(), address)
	if err != nil {
		t.Fatalf("repeat CalculateGains: %v", err)
	}
	sort.Slice(again, func(i, j int) bool { return again[i].Mint < again[j].Mint })
	if !reflect.DeepEqual(results, again) {
		t.Errorf("expected identical report on repeat:\nfirst  %+v\nsecond %+v", results, again)
	}
}

func TestCalculator_InvalidAddressIsFatalAndCheap(t *testing.T) {
	holdings := &fakeHoldings{}
	calc := NewCalculator(holdings, &fakeOracle{}, &fakeFilter{}, &fakeCostBasis{}, zap.NewNop())

	_, err := calc.CalculateGains(context.Background(), "not-a-wallet")
	var wge *WalletGainsError
	if !errors.As(err, &wge) {
		t.Fatalf("expected WalletGainsError, got %v", err)
	}
	if wge.Message != MsgInvalidAddress {
		t.Errorf("expected %q, got %q", MsgInvalidAddress, wge.Message)
	}
	if holdings.calls.Load() != 0 {
		t.Error("holdings source must not be called for an invalid address")
	}
}

func TestCalculator_HoldingsFailureIsFatal(t *testing.T) {
	holdings := &fakeHoldings{err: errors.New("rpc down")}
	calc := NewCalculator(holdings, &fakeOracle{}, &fakeFilter{}, &fakeCostBasis{}, zap.NewNop())

	_, err := calc.CalculateGains(context.Background(), testWallet(t))
	var wge *WalletGainsError
	if !errors.As(err, &wge) {
		t.Fatalf("expected WalletGainsError, got %v", err)
	}
	if wge.Message != MsgGainsFailed {
		t.Errorf("expected %q, got %q", MsgGainsFailed, wge.Message)
	}
}

func TestCalculator_IneligibleTokenDropped(t *testing.T) {
	holdings := &fakeHoldings{holdings: []domain.TokenHolding{
		{Mint: "good", UIAmount: 1},
		{Mint: "spam", UIAmount: 1_000_000},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"good": 1.0, "spam": 0.001}}
	filter := &fakeFilter{eligible: map[string]bool{"good": true}}

	calc := NewCalculator(holdings, oracle, filter, &fakeCostBasis{}, zap.NewNop())
	results, err := calc.CalculateGains(context.Background(), testWallet(t))
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 1 || results[0].Mint != "good" {
		t.Fatalf("expected only the eligible token, got %+v", results)
	}
}

func TestCalculator_UnpricedTokenDropped(t *testing.T) {
	holdings := &fakeHoldings{holdings: []domain.TokenHolding{
		{Mint: "priced", UIAmount: 2},
		{Mint: "unpriced", UIAmount: 2},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"priced": 4.0}}
	filter := &fakeFilter{eligible: map[string]bool{"priced": true, "unpriced": true}}

	calc := NewCalculator(holdings, oracle, filter, &fakeCostBasis{}, zap.NewNop())
	results, err := calc.CalculateGains(context.Background(), testWallet(t))
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 1 || results[0].Mint != "priced" {
		t.Fatalf("expected the unpriced token dropped, got %+v", results)
	}
}

func TestCalculator_CostBasisFailureDegradesToZero(t *testing.T) {
	holdings := &fakeHoldings{holdings: []domain.TokenHolding{
		{Mint: "mintA", UIAmount: 10},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"mintA": 1.5}}
	filter := &fakeFilter{eligible: map[string]bool{"mintA": true}}
	costBasis := &fakeCostBasis{err: errors.New("db down")}

	calc := NewCalculator(holdings, oracle, filter, costBasis, zap.NewNop())
	results, err := calc.CalculateGains(context.Background(), testWallet(t))
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].CostBasis != 0 || results[0].UnrealizedGain != 15.0 {
		t.Errorf("expected basis 0 and gain 15, got %+v", results[0])
	}
}

func TestCalculator_EmptyWallet(t *testing.T) {
	calc := NewCalculator(&fakeHoldings{}, &fakeOracle{}, &fakeFilter{}, &fakeCostBasis{}, zap.NewNop())

	results, err := calc.CalculateGains(context.Background(), testWallet(t))
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty report, got %+v", results)
	}
}

func TestCalculator_BoundedConcurrencyProcessesAll(t *testing.T) {
	var tokens []domain.TokenHolding
	prices := make(map[string]float64)
	eligible := make(map[string]bool)
	for i := 0; i < 50; i++ {
		mint := base58.Encode([]byte{byte(i), 1, 2, 3})
		tokens = append(tokens, domain.TokenHolding{Mint: mint, UIAmount: 1})
		prices[mint] = 1.0
		eligible[mint] = true
	}

	calc := NewCalculator(
		&fakeHoldings{holdings: tokens},
		&fakeOracle{prices: prices},
		&fakeFilter{eligible: eligible},
		&fakeCostBasis{},
		zap.NewNop(),
		WithConcurrency(3),
	)
	results, err := calc.CalculateGains(context.Background(), testWallet(t))
	if err != nil {
		t.Fatalf("CalculateGains: %v", err)
	}
	if len(results) != 50 {
		t.Fatalf("expected 50 results, got %d", len(results))
	}
}
