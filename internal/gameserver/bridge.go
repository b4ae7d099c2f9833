package gameserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/turnarena/internal/config"
	"github.com/cory-johannsen/turnarena/internal/protocol"
)

// BridgeMetrics receives connection and inbound message observations.
type BridgeMetrics interface {
	MessageRejected(reason string)
	ClientConnected()
	ClientDisconnected()
}

type nopBridgeMetrics struct{}

func (nopBridgeMetrics) MessageRejected(string) {}
func (nopBridgeMetrics) ClientConnected()       {}
func (nopBridgeMetrics) ClientDisconnected()    {}

// Bridge upgrades HTTP requests to websocket connections for the single
// controlling client. While one client is connected, further connections
// are refused with 409 Conflict.
type Bridge struct {
	driver   *Driver
	cfg      config.BridgeConfig
	upgrader websocket.Upgrader
	metrics  BridgeMetrics
	logger   *zap.Logger

	mu     sync.Mutex
	active *Client
	conn   *websocket.Conn
	closed bool
}

// NewBridge creates a Bridge feeding driver.
//
// Precondition: driver and logger must be non-nil; cfg must be validated.
func NewBridge(driver *Driver, cfg config.BridgeConfig, metrics BridgeMetrics, logger *zap.Logger) *Bridge {
	if metrics == nil {
		metrics = nopBridgeMetrics{}
	}
	return &Bridge{
		driver: driver,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ServeHTTP handles one websocket connection for its whole lifetime.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := NewClient(uuid.NewString(), b.cfg.OutboxSize)
	switch b.claim(c) {
	case claimClosed:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	case claimBusy:
		b.logger.Info("refusing second client", zap.String("remote", r.RemoteAddr))
		http.Error(w, "a client is already connected", http.StatusConflict)
		return
	}
	defer b.release(c)

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if !b.track(c, conn) {
		return
	}

	logger := b.logger.With(zap.String("client", c.ID()))
	logger.Info("client connected", zap.String("remote", r.RemoteAddr))
	b.metrics.ClientConnected()
	defer b.metrics.ClientDisconnected()

	b.driver.Attach(c)
	go b.writePump(conn, c)
	b.readPump(conn, logger)
	b.disconnect(c)
	logger.Info("client disconnected")
}

// Close drops the connected client, if any, and refuses new connections.
// http.Server.Shutdown leaves hijacked connections open; run Close alongside it.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.conn != nil {
		_ = b.conn.Close()
	}
}

type claimResult int

const (
	claimOK claimResult = iota
	claimBusy
	claimClosed
)

func (b *Bridge) claim(c *Client) claimResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.closed:
		return claimClosed
	case b.active != nil:
		return claimBusy
	}
	b.active = c
	return claimOK
}

// track records conn as the active connection. It returns false if Close ran
// while the connection was being upgraded.
func (b *Bridge) track(c *Client, conn *websocket.Conn) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.active != c {
		return false
	}
	b.conn = conn
	return true
}

func (b *Bridge) release(c *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == c {
		b.active = nil
		b.conn = nil
	}
}

// disconnect stops the driver routing frames to c before closing it, so no
// tick pushes into a closed client.
func (b *Bridge) disconnect(c *Client) {
	b.driver.Detach(c)
	c.Close()
}

// readPump decodes inbound frames and submits them to the driver until the
// connection fails.
func (b *Bridge) readPump(conn *websocket.Conn, logger *zap.Logger) {
	limiter := rate.NewLimiter(rate.Limit(b.cfg.MessagesPerSecond), b.cfg.Burst)

	conn.SetReadLimit(b.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(b.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(b.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			b.metrics.MessageRejected("rate_limit")
			continue
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			b.metrics.MessageRejected("decode")
			logger.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		b.driver.Submit(msg)
	}
}

// writePump writes queued frames and keepalive pings until the client is closed.
func (b *Bridge) writePump(conn *websocket.Conn, c *Client) {
	pingPeriod := (b.cfg.PongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
