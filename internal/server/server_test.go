package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/gains"
	"solana-wallet-gains/internal/observability"
	"solana-wallet-gains/internal/solana"
	"solana-wallet-gains/internal/solana/stub"
	"solana-wallet-gains/internal/storage/memory"
	"solana-wallet-gains/internal/wallet"
)

// validWallet is the system program address: 32 base58 ones decode to
// 32 zero bytes, a canonical curve point.
const validWallet = "11111111111111111111111111111111"

type fakeGains struct {
	results []domain.GainResult
	err     error
	calls   int
}

func (f *fakeGains) CalculateGains(_ context.Context, _ string) ([]domain.GainResult, error) {
	f.calls++
	return f.results, f.err
}

func newTestServer(g GainsService, rpc TransactionSource, opts ...Option) *Server {
	txCache := cache.NewTTLCache[[]solana.SignatureInfo](time.Minute)
	return New(g, rpc, txCache, zap.NewNop(), opts...)
}

func doRequest(t *testing.T, s *Server, path string) (*http.Response, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	resp := rec.Result()
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, body
}

func TestHandleWalletGains_OK(t *testing.T) {
	g := &fakeGains{results: []domain.GainResult{
		domain.NewGainResult("mintA", 2.0, 10, 5.0),
	}}
	s := newTestServer(g, stub.NewRPCClient())

	resp, body := doRequest(t, s, "/api/wallet/"+validWallet)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !body.Success {
		t.Fatal("expected success")
	}

	data, ok := body.Data.([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("expected 1 result, got %v", body.Data)
	}
	entry, _ := data[0].(map[string]interface{})
	if entry["mint"] != "mintA" {
		t.Errorf("expected mint mintA, got %v", entry["mint"])
	}
	if entry["unrealizedGain"] != 15.0 {
		t.Errorf("expected unrealizedGain 15, got %v", entry["unrealizedGain"])
	}
}

func TestHandleWalletGains_ShortAddressRejectedEarly(t *testing.T) {
	g := &fakeGains{}
	s := newTestServer(g, stub.NewRPCClient())

	resp, body := doRequest(t, s, "/api/wallet/short")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Success {
		t.Fatal("expected failure envelope")
	}
	if body.Message != gains.MsgInvalidAddress {
		t.Errorf("expected %q, got %q", gains.MsgInvalidAddress, body.Message)
	}
	if g.calls != 0 {
		t.Error("calculator must not run for structurally invalid input")
	}
}

func TestHandleWalletGains_InvalidAddressFromCalculator(t *testing.T) {
	g := &fakeGains{err: &gains.WalletGainsError{
		Message: gains.MsgInvalidAddress,
		Err:     wallet.ErrInvalidAddress,
	}}
	s := newTestServer(g, stub.NewRPCClient())

	resp, body := doRequest(t, s, "/api/wallet/"+validWallet)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Message != gains.MsgInvalidAddress {
		t.Errorf("expected %q, got %q", gains.MsgInvalidAddress, body.Message)
	}
}

func TestHandleWalletGains_InternalFailure(t *testing.T) {
	g := &fakeGains{err: &gains.WalletGainsError{
		Message: gains.MsgGainsFailed,
		Err:     errors.New("rpc down"),
	}}
	s := newTestServer(g, stub.NewRPCClient())

	resp, body := doRequest(t, s, "/api/wallet/"+validWallet)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body.Message != gains.MsgGainsFailed {
		t.Errorf("internal cause must not leak, got %q", body.Message)
	}
}

func TestHandleWalletTransactions_CachesResult(t *testing.T) {
	rpc := stub.NewRPCClient()
	blockTime := int64(1700000000)
	rpc.Signatures[validWallet] = []solana.SignatureInfo{
		{Signature: "sig1", Slot: 100, BlockTime: &blockTime},
	}
	s := newTestServer(&fakeGains{}, rpc)

	resp, body := doRequest(t, s, "/api/wallet/"+validWallet+"/txs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !body.Success {
		t.Fatal("expected success")
	}

	doRequest(t, s, "/api/wallet/"+validWallet+"/txs")
	if rpc.Calls["getSignaturesForAddress"] != 1 {
		t.Errorf("expected cached second lookup, got %d RPC calls",
			rpc.Calls["getSignaturesForAddress"])
	}
}

func TestHandleWalletTransactions_InvalidAddress(t *testing.T) {
	s := newTestServer(&fakeGains{}, stub.NewRPCClient())

	// Right length, but not base58.
	resp, body := doRequest(t, s, "/api/wallet/00000000000000000000000000000000/txs")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Message != gains.MsgInvalidAddress {
		t.Errorf("expected %q, got %q", gains.MsgInvalidAddress, body.Message)
	}
}

func TestHandleWalletTransactions_RPCFailure(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Fail = true
	s := newTestServer(&fakeGains{}, rpc)

	resp, body := doRequest(t, s, "/api/wallet/"+validWallet+"/txs")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestHandleTokenQuotes(t *testing.T) {
	history := memory.NewQuoteHistoryStore()
	err := history.Insert(context.Background(), &domain.QuoteRecord{
		Mint:       "mintA",
		Source:     domain.SourceCoinGecko,
		PriceUSD:   1.5,
		ResolvedAt: 1700000000000,
	})
	if err != nil {
		t.Fatalf("insert quote: %v", err)
	}
	s := newTestServer(&fakeGains{}, stub.NewRPCClient(), WithQuoteHistory(history))

	resp, body := doRequest(t, s, "/api/token/mintA/quotes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, ok := body.Data.([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("expected 1 quote, got %v", body.Data)
	}
}

func TestHandleTokenQuotes_Disabled(t *testing.T) {
	s := newTestServer(&fakeGains{}, stub.NewRPCClient())

	resp, _ := doRequest(t, s, "/api/token/mintA/quotes")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when history is disabled, got %d", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeGains{}, stub.NewRPCClient())

	resp, body := doRequest(t, s, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !body.Success {
		t.Fatal("expected success")
	}
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	s := newTestServer(&fakeGains{}, stub.NewRPCClient(), WithMetrics(metrics))

	doRequest(t, s, "/api/wallet/short")
	doRequest(t, s, "/api/wallet/"+validWallet)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, fam := range families {
		if fam.GetName() == "test_api_gains_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected gains request counter to be registered")
	}
}
