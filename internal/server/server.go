// Package server exposes the wallet gains API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/domain"
	"solana-wallet-gains/internal/gains"
	"solana-wallet-gains/internal/observability"
	"solana-wallet-gains/internal/solana"
	"solana-wallet-gains/internal/storage"
	"solana-wallet-gains/internal/wallet"
)

// txHistoryLimit caps the signatures returned per wallet.
const txHistoryLimit = 50

// GainsService computes the per-token gain report for a wallet.
type GainsService interface {
	CalculateGains(ctx context.Context, rawAddress string) ([]domain.GainResult, error)
}

// TransactionSource lists recent signatures for an address.
type TransactionSource interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error)
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	gains   GainsService
	txs     TransactionSource
	txCache cache.Cache[[]solana.SignatureInfo]
	quotes  storage.QuoteHistoryStore // nil disables /api/token/{mint}/quotes
	metrics *observability.Metrics    // nil disables instrumentation
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithQuoteHistory enables the quote history endpoint.
func WithQuoteHistory(store storage.QuoteHistoryStore) Option {
	return func(s *Server) {
		s.quotes = store
	}
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a Server.
func New(
	gainsService GainsService,
	txs TransactionSource,
	txCache cache.Cache[[]solana.SignatureInfo],
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		gains:   gainsService,
		txs:     txs,
		txCache: txCache,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler for all API endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/wallet/{address}", s.handleWalletGains)
	mux.HandleFunc("GET /api/wallet/{address}/txs", s.handleWalletTransactions)
	mux.HandleFunc("GET /api/token/{mint}/quotes", s.handleTokenQuotes)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// apiResponse is the envelope for every API reply.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) handleWalletGains(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	start := time.Now()

	// Cheap structural pre-check so obviously malformed input never
	// reaches the calculator or any collaborator.
	if len(address) < wallet.MinAddressLen {
		s.countGains("invalid_address")
		s.writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: gains.MsgInvalidAddress,
		})
		return
	}

	results, err := s.gains.CalculateGains(r.Context(), address)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAddress) {
			s.countGains("invalid_address")
			s.writeJSON(w, http.StatusBadRequest, apiResponse{
				Success: false,
				Message: gains.MsgInvalidAddress,
			})
			return
		}

		s.logger.Error("gains calculation failed",
			zap.String("wallet", address), zap.Error(err))
		s.countGains("error")

		message := gains.MsgGainsFailed
		var wge *gains.WalletGainsError
		if errors.As(err, &wge) {
			message = wge.Message
		}
		s.writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: message,
		})
		return
	}

	s.countGains("ok")
	if s.metrics != nil {
		s.metrics.GainsDuration.Observe(time.Since(start).Seconds())
		s.metrics.TokensReported.Add(float64(len(results)))
	}
	s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: results})
}

func (s *Server) handleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	if _, err := wallet.Validate(address); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: gains.MsgInvalidAddress,
		})
		return
	}

	if sigs, ok := s.txCache.Get(r.Context(), address); ok {
		s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: sigs})
		return
	}

	sigs, err := s.txs.GetSignaturesForAddress(r.Context(), address, &solana.SignaturesOpts{
		Limit: txHistoryLimit,
	})
	if err != nil {
		s.logger.Error("signature fetch failed",
			zap.String("wallet", address), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "Failed to fetch transactions",
		})
		return
	}

	s.txCache.Set(r.Context(), address, sigs)
	s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: sigs})
}

func (s *Server) handleTokenQuotes(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		s.writeJSON(w, http.StatusNotFound, apiResponse{
			Success: false,
			Message: "Quote history is not enabled",
		})
		return
	}

	mint := r.PathValue("mint")
	records, err := s.quotes.GetByMint(r.Context(), mint, txHistoryLimit)
	if err != nil {
		s.logger.Error("quote history fetch failed",
			zap.String("mint", mint), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "Failed to fetch quote history",
		})
		return
	}

	quotes := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		quotes[i] = map[string]interface{}{
			"mint":       rec.Mint,
			"source":     rec.Source,
			"priceUsd":   rec.PriceUSD,
			"resolvedAt": rec.ResolvedAt,
		}
	}
	s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: quotes})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: "ok"})
}

func (s *Server) countGains(outcome string) {
	if s.metrics != nil {
		s.metrics.GainsRequests.WithLabelValues(outcome).Inc()
	}
}
