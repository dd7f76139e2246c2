package market

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logrus "github.com/sirupsen/logrus"
)

// Feed connection states.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

const (
	maxReconnectAttempts = 10
	reconnectDelay       = 5 * time.Second
	staleAfter           = 2 * time.Minute
)

// TickerUpdate is one message from the market ticker stream.
type TickerUpdate struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"` // percent
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// Feed maintains a websocket subscription to the market ticker stream and
// caches the latest update per symbol. The snapshot client consults it for
// fresher data than the REST overview provides. Losing the feed degrades
// snapshots, never breaks them.
type Feed struct {
	url string

	mu       sync.RWMutex
	conn     *websocket.Conn
	status   string
	latest   map[string]TickerUpdate
	received time.Time

	stopCh chan struct{}
}

func NewFeed(url string) *Feed {
	return &Feed{
		url:    url,
		status: StateDisconnected,
		latest: make(map[string]TickerUpdate),
		stopCh: make(chan struct{}),
	}
}

// Start dials the stream and launches the read loop. Returns an error only
// when the first connection attempt fails outright.
func (f *Feed) Start() error {
	if err := f.connect(); err != nil {
		return fmt.Errorf("failed to connect to market feed: %w", err)
	}
	go f.readLoop()
	return nil
}

func (f *Feed) connect() error {
	f.setStatus(StateConnecting)
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		f.setStatus(StateDisconnected)
		return err
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	f.setStatus(StateConnected)
	logrus.Infof("Market feed connected: %s", f.url)
	return nil
}

// readLoop consumes ticker messages and reconnects with a fixed delay when
// the connection drops, up to maxReconnectAttempts in a row.
func (f *Feed) readLoop() {
	attempts := 0
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()

		_, message, err := conn.ReadMessage()
		if err != nil {
			f.setStatus(StateDisconnected)
			attempts++
			if attempts > maxReconnectAttempts {
				logrus.Errorf("Market feed gave up after %d reconnect attempts", maxReconnectAttempts)
				return
			}
			logrus.Warnf("Market feed read failed (attempt %d/%d), reconnecting: %v", attempts, maxReconnectAttempts, err)
			select {
			case <-f.stopCh:
				return
			case <-time.After(reconnectDelay):
			}
			if err := f.connect(); err != nil {
				logrus.Warnf("Market feed reconnect failed: %v", err)
			}
			continue
		}
		attempts = 0

		var update TickerUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			logrus.Debugf("Skipping malformed ticker message: %v", err)
			continue
		}
		if update.Symbol == "" {
			continue
		}
		f.mu.Lock()
		f.latest[update.Symbol] = update
		f.received = time.Now()
		f.mu.Unlock()
	}
}

// Latest returns the freshest update for a symbol. Stale entries (no feed
// traffic for two minutes) are not returned.
func (f *Feed) Latest(symbol string) (TickerUpdate, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Since(f.received) > staleAfter {
		return TickerUpdate{}, false
	}
	update, ok := f.latest[symbol]
	return update, ok
}

// Status returns the current connection state.
func (f *Feed) Status() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

func (f *Feed) setStatus(status string) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// Stop closes the connection and ends the read loop.
func (f *Feed) Stop() {
	close(f.stopCh)
	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.mu.Unlock()
}
