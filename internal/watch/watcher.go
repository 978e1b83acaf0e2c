// Package watch invalidates cached wallet data when on-chain account
// state changes.
package watch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"solana-wallet-gains/internal/cache"
	"solana-wallet-gains/internal/solana"
)

// Watcher subscribes to account updates and drops stale cache entries
// so the next transaction lookup hits the RPC node again.
type Watcher struct {
	ws      solana.WSClient
	txCache cache.Cache[[]solana.SignatureInfo]
	logger  *zap.Logger

	mu      sync.Mutex
	watched map[string]context.CancelFunc
}

// NewWatcher creates a Watcher on top of an established WS client.
func NewWatcher(ws solana.WSClient, txCache cache.Cache[[]solana.SignatureInfo], logger *zap.Logger) *Watcher {
	return &Watcher{
		ws:      ws,
		txCache: txCache,
		logger:  logger,
		watched: make(map[string]context.CancelFunc),
	}
}

// Watch starts invalidation for a wallet address. Watching the same
// address twice is a no-op.
func (w *Watcher) Watch(ctx context.Context, address string) error {
	w.mu.Lock()
	if _, ok := w.watched[address]; ok {
		w.mu.Unlock()
		return nil
	}
	subCtx, cancel := context.WithCancel(ctx)
	w.watched[address] = cancel
	w.mu.Unlock()

	ch, err := w.ws.SubscribeAccount(subCtx, address)
	if err != nil {
		w.unwatch(address)
		return err
	}

	go w.consume(subCtx, address, ch)
	w.logger.Info("watching account", zap.String("wallet", address))
	return nil
}

// Stop cancels all subscriptions and closes the WS connection.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	for address, cancel := range w.watched {
		cancel()
		delete(w.watched, address)
	}
	w.mu.Unlock()
	return w.ws.Close()
}

func (w *Watcher) consume(ctx context.Context, address string, ch <-chan solana.AccountNotification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				w.unwatch(address)
				return
			}
			w.txCache.Delete(ctx, address)
			w.logger.Debug("cache invalidated",
				zap.String("wallet", address), zap.Int64("slot", n.Slot))
		}
	}
}

func (w *Watcher) unwatch(address string) {
	w.mu.Lock()
	if cancel, ok := w.watched[address]; ok {
		cancel()
		delete(w.watched, address)
	}
	w.mu.Unlock()
}
