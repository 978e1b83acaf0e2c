package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID to the notification channel and the
	// pubkey it covers; pubkeys are kept for resubscription after
	// reconnect.
	subs   map[int64]*accountSub
	subsMu sync.RWMutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

type accountSub struct {
	pubkey string
	ch     chan AccountNotification
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[int64]*accountSub),
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

var _ WSClient = (*WSClientImpl)(nil)

func (c *WSClientImpl) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial websocket %s: %w", c.endpoint, err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// SubscribeAccount subscribes to state changes of an account. The
// returned channel is closed when the client shuts down.
func (c *WSClientImpl) SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("websocket client closed")
	}

	subID, err := c.sendSubscribe(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	ch := make(chan AccountNotification, 16)
	c.subsMu.Lock()
	c.subs[subID] = &accountSub{pubkey: pubkey, ch: ch}
	c.subsMu.Unlock()

	return ch, nil
}

func (c *WSClientImpl) sendSubscribe(ctx context.Context, pubkey string) (int64, error) {
	reqID := c.requestID.Add(1)
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "accountSubscribe",
		Params: []interface{}{
			pubkey,
			map[string]interface{}{"encoding": "base64", "commitment": "confirmed"},
		},
	}

	wait := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = wait
	c.pendingSubsMu.Unlock()
	defer func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}()

	if err := c.writeJSON(req); err != nil {
		return 0, fmt.Errorf("send accountSubscribe: %w", err)
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.done:
		return 0, fmt.Errorf("websocket client closed")
	case subID := <-wait:
		return subID, nil
	}
}

func (c *WSClientImpl) writeJSON(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("no connection")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// wsMessage covers both subscription confirmations and notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Lamports uint64 `json:"lamports"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			// Reconnect with backoff, then resubscribe.
			select {
			case <-c.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			if err := c.reconnect(); err != nil {
				continue
			}
			delay = c.config.ReconnectDelay
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.ID != 0 && msg.Result != nil:
			// Subscription confirmation.
			var subID int64
			if err := json.Unmarshal(msg.Result, &subID); err != nil {
				continue
			}
			c.pendingSubsMu.Lock()
			if wait, ok := c.pendingSubs[msg.ID]; ok {
				wait <- subID
			}
			c.pendingSubsMu.Unlock()

		case msg.Method == "accountNotification" && msg.Params != nil:
			c.subsMu.RLock()
			sub, ok := c.subs[msg.Params.Subscription]
			c.subsMu.RUnlock()
			if !ok {
				continue
			}
			n := AccountNotification{
				Pubkey:   sub.pubkey,
				Slot:     msg.Params.Result.Context.Slot,
				Lamports: msg.Params.Result.Value.Lamports,
			}
			select {
			case sub.ch <- n:
			default:
				// Slow consumer; drop rather than block the reader.
			}
		}
	}
}

// reconnect re-dials and resubscribes all active accounts. Subscription
// IDs change across connections, so the subs map is rebuilt.
func (c *WSClientImpl) reconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		return err
	}

	c.subsMu.Lock()
	old := c.subs
	c.subs = make(map[int64]*accountSub, len(old))
	c.subsMu.Unlock()

	for _, sub := range old {
		subID, err := c.sendSubscribe(ctx, sub.pubkey)
		if err != nil {
			close(sub.ch)
			continue
		}
		c.subsMu.Lock()
		c.subs[subID] = sub
		c.subsMu.Unlock()
	}
	return nil
}

func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Close closes the WebSocket connection and all subscription channels.
func (c *WSClientImpl) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		close(sub.ch)
	}
	c.subs = make(map[int64]*accountSub)
	c.subsMu.Unlock()

	return nil
}
