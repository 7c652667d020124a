// ABOUTME: Connection manager owning the single realtime websocket channel to the backend.
// ABOUTME: Handles connect, fixed-interval reconnect, and dispatch of inbound frames into the store.
package conn

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/signalflux/fluxwatch/store"
	"github.com/signalflux/fluxwatch/wire"
)

// defaultReconnectDelay is the fixed retry interval after a channel close.
// Reconnects repeat indefinitely at this interval; there is no backoff curve
// and no attempt cap.
const defaultReconnectDelay = 3 * time.Second

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithReconnectDelay overrides the fixed reconnect interval.
func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) { m.reconnectDelay = d }
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithToken attaches a bearer credential to the connection handshake.
func WithToken(token string) Option {
	return func(m *Manager) {
		if token != "" {
			m.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// Manager owns one duplex websocket channel. All inbound frames are decoded
// and dispatched into the store from a single read loop goroutine, preserving
// the store's single-writer discipline for accumulated run data.
type Manager struct {
	url            string
	store          *store.Store
	dialer         *websocket.Dialer
	header         http.Header
	reconnectDelay time.Duration
	clientID       string

	mu             sync.Mutex
	ws             *websocket.Conn
	ctx            context.Context
	reconnectTimer *time.Timer
	closed         bool

	// writeMu serializes outbound frames; gorilla permits one writer at a time.
	writeMu sync.Mutex
}

// NewManager creates a manager for the given websocket URL. The store is
// registered as the dispatch target and the manager registers itself as the
// store's command sender.
func NewManager(url string, st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		url:            url,
		store:          st,
		dialer:         websocket.DefaultDialer,
		header:         http.Header{},
		reconnectDelay: defaultReconnectDelay,
		clientID:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(m)
	}
	st.SetCommandSender(m)
	return m
}

// Connect establishes the channel. If the channel is already open this is a
// no-op. On open, two bootstrap requests resynchronize listing state that may
// have drifted while disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("conn: manager closed")
	}
	if m.ws != nil {
		m.mu.Unlock()
		return nil
	}
	m.ctx = ctx
	m.mu.Unlock()

	ws, _, err := m.dialer.DialContext(ctx, m.url, m.header)
	if err != nil {
		m.scheduleReconnect()
		return fmt.Errorf("conn: dial %s: %w", m.url, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = ws.Close()
		return fmt.Errorf("conn: manager closed")
	}
	m.ws = ws
	m.mu.Unlock()

	log.Printf("conn: connected url=%s client_id=%s", m.url, m.clientID)

	// Resynchronize listing state that may have drifted during disconnect.
	m.SendCommand(wire.GetHistory())
	m.SendCommand(wire.GetQueryGroups())

	go m.readLoop(ws)
	return nil
}

// Connected reports whether the channel is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ws != nil
}

// SendCommand sends a fire-and-forget command frame. If the channel is not
// open the command is silently dropped, not queued; callers must not assume
// delivery.
func (m *Manager) SendCommand(cmd wire.Command) {
	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()
	if ws == nil {
		return
	}

	data, err := cmd.Encode()
	if err != nil {
		log.Printf("conn: encode command %s: %v", cmd.Command, err)
		return
	}

	m.writeMu.Lock()
	err = ws.WriteMessage(websocket.TextMessage, data)
	m.writeMu.Unlock()
	if err != nil {
		log.Printf("conn: write command %s: %v", cmd.Command, err)
	}
}

// Close tears the manager down: the channel is closed and any pending
// reconnect timer is cancelled so no timer leaks past disposal.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	if m.ws != nil {
		_ = m.ws.Close()
		m.ws = nil
	}
}

// readLoop decodes inbound frames and dispatches them into the store until
// the channel closes. A malformed frame is dropped and logged; the connection
// stays alive. On close, exactly one reconnect is scheduled.
func (m *Manager) readLoop(ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			m.handleClose(ws, err)
			return
		}

		msg, err := wire.Decode(raw)
		if err != nil {
			log.Printf("conn: dropping malformed frame: %v", err)
			continue
		}
		if unknown, ok := msg.(wire.UnknownMessage); ok {
			_ = unknown // ignored for forward compatibility
			continue
		}
		m.store.Dispatch(msg)
	}
}

// handleClose clears the connection and schedules a single reconnect attempt,
// unless the manager was deliberately closed.
func (m *Manager) handleClose(ws *websocket.Conn, cause error) {
	_ = ws.Close()

	m.mu.Lock()
	if m.ws == ws {
		m.ws = nil
	}
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return
	}
	log.Printf("conn: channel closed: %v; reconnecting in %s", cause, m.reconnectDelay)
	m.scheduleReconnect()
}

// scheduleReconnect arms the reconnect timer if one is not already pending.
// Transport errors are never surfaced as user-fatal: the retry repeats at a
// fixed interval for as long as the manager lives.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.reconnectTimer != nil {
		return
	}
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m.reconnectTimer = time.AfterFunc(m.reconnectDelay, func() {
		m.mu.Lock()
		m.reconnectTimer = nil
		closed := m.closed
		m.mu.Unlock()
		if closed || ctx.Err() != nil {
			return
		}
		if err := m.Connect(ctx); err != nil {
			log.Printf("conn: reconnect failed: %v", err)
		}
	})
}
