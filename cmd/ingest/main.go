// Package main loads cost basis records from a CSV file into the
// cost basis store. Expected columns: wallet_address,mint,cost_usd.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/logging"
	"solana-wallet-gains/internal/storage"
	"solana-wallet-gains/internal/storage/memory"
	pgstore "solana-wallet-gains/internal/storage/postgres"
	"solana-wallet-gains/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty uses in-memory, dry run only)")
	input := flag.String("input", "", "CSV file with wallet_address,mint,cost_usd rows (- for stdin)")
	skipHeader := flag.Bool("skip-header", true, "Skip the first CSV row")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *input == "" {
		logger.Fatal("--input is required")
	}

	var reader io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Fatal("open input", zap.Error(err))
		}
		defer f.Close()
		reader = f
	}

	ctx := context.Background()

	var store storage.CostBasisStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		store = pgstore.NewCostBasisStore(pool)
	} else {
		logger.Warn("no postgres DSN, running against in-memory store (records are discarded on exit)")
		store = memory.NewCostBasisStore()
	}
	if err := store.EnsureInitialized(ctx); err != nil {
		logger.Fatal("init store", zap.Error(err))
	}

	loaded, skipped, err := ingest(ctx, store, reader, *skipHeader, logger)
	if err != nil {
		logger.Fatal("ingest failed", zap.Error(err))
	}
	logger.Info("ingest complete", zap.Int("loaded", loaded), zap.Int("skipped", skipped))
}

// ingest reads CSV rows and upserts each valid record. Malformed rows
// are skipped with a warning rather than aborting the whole file.
func ingest(ctx context.Context, store storage.CostBasisStore, r io.Reader, skipHeader bool, logger *zap.Logger) (loaded, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, skipped, fmt.Errorf("read csv: %w", err)
		}
		line++
		if skipHeader && line == 1 {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			logger.Warn("skipping row", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}

		if err := store.Put(ctx, rec); err != nil {
			return loaded, skipped, fmt.Errorf("put record (line %d): %w", line, err)
		}
		loaded++
	}
	return loaded, skipped, nil
}

func parseRow(row []string) (*domain.CostBasisRecord, error) {
	if len(row) < 3 {
		return nil, fmt.Errorf("expected 3 columns, got %d", len(row))
	}

	address := strings.TrimSpace(row[0])
	if _, err := wallet.Validate(address); err != nil {
		return nil, fmt.Errorf("wallet address: %w", err)
	}

	mint := strings.TrimSpace(row[1])
	if mint == "" {
		return nil, fmt.Errorf("empty mint")
	}

	costUSD, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("cost_usd: %w", err)
	}
	if costUSD < 0 {
		return nil, fmt.Errorf("negative cost_usd %v", costUSD)
	}

	return &domain.CostBasisRecord{
		WalletAddress: address,
		Mint:          mint,
		CostUSD:       costUSD,
		UpdatedAt:     time.Now().UnixMilli(),
	}, nil
}
