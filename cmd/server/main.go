// Package main runs the wallet gains HTTP service: token holdings come
// from Solana RPC, prices from a CoinGecko/DexScreener/Raydium fallback
// chain, cost basis from PostgreSQL, and resolved quotes are archived
// to ClickHouse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/config"
	"solana-wallet-gains/internal/eligibility"
	"solana-wallet-gains/internal/gains"
	"solana-wallet-gains/internal/logging"
	"solana-wallet-gains/internal/observability"
	"solana-wallet-gains/internal/pricing"
	"solana-wallet-gains/internal/server"
	"solana-wallet-gains/internal/solana"
	"solana-wallet-gains/internal/storage"
	chstore "solana-wallet-gains/internal/storage/clickhouse"
	"solana-wallet-gains/internal/storage/memory"
	pgstore "solana-wallet-gains/internal/storage/postgres"
	"solana-wallet-gains/internal/watch"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := config.Default()

	// Parse flags (env vars as defaults)
	flag.StringVar(&cfg.RPCEndpoint, "rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	flag.StringVar(&cfg.WSEndpoint, "ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, enables cache invalidation)")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty uses in-memory cost basis)")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty disables quote history)")
	flag.StringVar(&cfg.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL (empty uses in-memory caches)")
	flag.StringVar(&cfg.CoinGeckoAPIKey, "coingecko-api-key", os.Getenv("COINGECKO_API_KEY"), "CoinGecko demo API key")
	flag.DurationVar(&cfg.PriceTTL, "price-ttl", cfg.PriceTTL, "Price cache TTL")
	flag.DurationVar(&cfg.MetadataTTL, "metadata-ttl", cfg.MetadataTTL, "Eligibility cache TTL")
	flag.DurationVar(&cfg.TransactionTTL, "transaction-ttl", cfg.TransactionTTL, "Transaction cache TTL")
	flag.StringVar(&cfg.ListenAddr, "listen-addr", envOr("LISTEN_ADDR", cfg.ListenAddr), "HTTP listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", cfg.LogLevel), "Log level (debug, info, warn, error)")
	watchWallets := flag.String("watch-wallets", os.Getenv("WATCH_WALLETS"), "Comma-separated wallet addresses to watch for cache invalidation")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	costBasis, quoteHistory, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("create stores", zap.Error(err))
	}
	defer cleanup()

	// Caches
	priceCache, metadataCache, txCache, err := createCaches(cfg, logger)
	if err != nil {
		logger.Fatal("create caches", zap.Error(err))
	}

	// Chain access
	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	holdings := solana.NewHoldingsProvider(rpc)

	// Price oracle with fallback chain, most-trusted source first.
	sources := []pricing.Source{
		pricing.NewCoinGeckoSource(cfg.CoinGeckoAPIKey),
		pricing.NewDexScreenerSource(),
		pricing.NewRaydiumSource(),
	}
	metrics := observability.NewMetrics("", prometheus.DefaultRegisterer)
	oracleOpts := []pricing.OracleOption{pricing.WithMetrics(metrics)}
	if quoteHistory != nil {
		oracleOpts = append(oracleOpts, pricing.WithQuoteHistory(quoteHistory))
	}
	oracle := pricing.NewOracle(sources, priceCache, logger, oracleOpts...)

	// Eligibility: 2-of-3 quorum over market-data signals.
	market := eligibility.NewMarketSignals(pricing.DefaultDexScreenerURL, cfg.MetadataTTL)
	filter := eligibility.NewFilter([]eligibility.Signal{
		market.Liquidity(eligibility.DefaultMinLiquidityUSD),
		market.Volume(eligibility.DefaultMinVolume24hUSD),
		market.Age(eligibility.DefaultMinPairAge),
	}, metadataCache, logger)

	calculator := gains.NewCalculator(holdings, oracle, filter, costBasis, logger,
		gains.WithMetrics(metrics))

	serverOpts := []server.Option{server.WithMetrics(metrics)}
	if quoteHistory != nil {
		serverOpts = append(serverOpts, server.WithQuoteHistory(quoteHistory))
	}
	api := server.New(calculator, rpc, txCache, logger, serverOpts...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.Handle("/", api.Routes())

	// Account watcher (optional)
	var watcher *watch.Watcher
	if cfg.WSEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, nil)
		if err != nil {
			logger.Fatal("connect websocket", zap.Error(err))
		}
		watcher = watch.NewWatcher(ws, txCache, logger)
		for _, address := range splitList(*watchWallets) {
			if err := watcher.Watch(ctx, address); err != nil {
				logger.Warn("watch wallet failed",
					zap.String("wallet", address), zap.Error(err))
			}
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("watcher stop", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}

// createStores wires the cost basis and quote history stores based on
// the configured DSNs.
func createStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.CostBasisStore, storage.QuoteHistoryStore, func(), error) {
	var (
		costBasis    storage.CostBasisStore
		quoteHistory storage.QuoteHistoryStore
		cleanups     []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		costBasis = pgstore.NewCostBasisStore(pool)
	} else {
		logger.Warn("no postgres DSN, cost basis is in-memory only")
		costBasis = memory.NewCostBasisStore()
	}
	if err := costBasis.EnsureInitialized(ctx); err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("init cost basis store: %w", err)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		store := chstore.NewQuoteHistoryStore(conn)
		if err := store.EnsureInitialized(ctx); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("init quote history store: %w", err)
		}
		quoteHistory = store
	}

	return costBasis, quoteHistory, cleanup, nil
}

// createCaches builds the three TTL cache categories, Redis-backed when
// a URL is configured.
func createCaches(cfg config.Config, logger *zap.Logger) (
	cache.Cache[float64],
	cache.Cache[bool],
	cache.Cache[[]solana.SignatureInfo],
	error,
) {
	if cfg.RedisURL == "" {
		return cache.NewTTLCache[float64](cfg.PriceTTL),
			cache.NewTTLCache[bool](cfg.MetadataTTL),
			cache.NewTTLCache[[]solana.SignatureInfo](cfg.TransactionTTL),
			nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return cache.NewRedisCache[float64](rdb, "price", cfg.PriceTTL, logger),
		cache.NewRedisCache[bool](rdb, "eligibility", cfg.MetadataTTL, logger),
		cache.NewRedisCache[[]solana.SignatureInfo](rdb, "txs", cfg.TransactionTTL, logger),
		nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
