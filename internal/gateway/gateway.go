// Package gateway maintains the realtime websocket session: it dials,
// authenticates, heartbeats, and feeds decoded event records to the
// connection-state engine. Session-level control frames never leave this
// package.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// DefaultHeartbeatInterval is the cadence of keepalive pings.
const DefaultHeartbeatInterval = 15 * time.Second

// RecordHandler consumes one decoded event record. A returned error marks
// that single record as failed; the session keeps reading.
type RecordHandler func(ctx context.Context, record json.RawMessage) error

// Gateway is a self-healing realtime session against one websocket endpoint.
type Gateway struct {
	logger            *slog.Logger
	url               string
	token             string
	heartbeatInterval time.Duration
	handler           RecordHandler

	// onReconnect runs before each authentication attempt after the first,
	// so stale session state can be discarded ahead of the fresh bootstrap.
	onReconnect func(ctx context.Context)

	dialer *websocket.Dialer

	// writeMu serializes frame writes: the heartbeat and caller-initiated
	// sends share one connection.
	writeMu sync.Mutex
	connMu  sync.Mutex
	conn    *websocket.Conn
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHeartbeatInterval overrides the keepalive cadence.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(g *Gateway) {
		if interval > 0 {
			g.heartbeatInterval = interval
		}
	}
}

// WithOnReconnect registers the pre-reauthentication hook.
func WithOnReconnect(hook func(ctx context.Context)) Option {
	return func(g *Gateway) {
		g.onReconnect = hook
	}
}

// WithDialer overrides the websocket dialer. Used by tests.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(g *Gateway) {
		if dialer != nil {
			g.dialer = dialer
		}
	}
}

// New creates a gateway session driver. Run starts it.
func New(logger *slog.Logger, url, token string, handler RecordHandler, opts ...Option) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	gw := &Gateway{
		logger:            logger,
		url:               url,
		token:             token,
		heartbeatInterval: DefaultHeartbeatInterval,
		handler:           handler,
		dialer:            websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(gw)
	}

	return gw
}

// controlFrame is the session-level frame envelope in both directions.
type controlFrame struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	Error     string `json:"error,omitempty"`
	ChannelID string `json:"channel,omitempty"`
}

// ErrNoSession indicates an outbound frame was attempted with no active
// connection.
var ErrNoSession = errors.New("gateway: no active session")

func (g *Gateway) setConn(conn *websocket.Conn) {
	g.connMu.Lock()
	g.conn = conn
	g.connMu.Unlock()
}

func (g *Gateway) activeConn() *websocket.Conn {
	g.connMu.Lock()
	defer g.connMu.Unlock()

	return g.conn
}

func (g *Gateway) writeFrame(conn *websocket.Conn, frame controlFrame) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	return conn.WriteJSON(frame)
}

// send writes one frame on the active session.
func (g *Gateway) send(frame controlFrame) error {
	conn := g.activeConn()
	if conn == nil {
		return ErrNoSession
	}

	return g.writeFrame(conn, frame)
}

// BeginTyping announces a typing indicator in the given channel.
func (g *Gateway) BeginTyping(channelID string) error {
	return g.send(controlFrame{Type: "BeginTyping", ChannelID: channelID})
}

// EndTyping withdraws the typing indicator in the given channel.
func (g *Gateway) EndTyping(channelID string) error {
	return g.send(controlFrame{Type: "EndTyping", ChannelID: channelID})
}

// Run drives the session until ctx is cancelled: connect, authenticate,
// pump records, and on any transport failure reconnect with exponential
// backoff. Returns nil on cancellation.
func (g *Gateway) Run(ctx context.Context) error {
	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 0

	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if !first && g.onReconnect != nil {
			g.onReconnect(ctx)
		}

		err := g.runSession(ctx, func() {
			retry.Reset()
		})
		if ctx.Err() != nil {
			return nil
		}
		first = false

		wait := retry.NextBackOff()
		g.logger.WarnContext(ctx, "gateway session ended, reconnecting",
			"error", err, "wait", wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// runSession runs one connection to completion. onAuthenticated fires when
// the node accepts the session token.
func (g *Gateway) runSession(ctx context.Context, onAuthenticated func()) error {
	conn, _, err := g.dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("gateway: dial %s: %w", g.url, err)
	}
	g.setConn(conn)
	defer g.setConn(nil)

	// Unblock the read loop when ctx is cancelled.
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		conn.Close()
	}()

	if err := g.writeFrame(conn, controlFrame{Type: "Authenticate", Token: g.token}); err != nil {
		return fmt.Errorf("gateway: authenticate: %w", err)
	}

	heartbeatErr := make(chan error, 1)
	go g.runHeartbeat(sessionCtx, conn, heartbeatErr)

	readErr := make(chan error, 1)
	go g.runReadLoop(sessionCtx, conn, onAuthenticated, readErr)

	select {
	case err := <-heartbeatErr:
		return err
	case err := <-readErr:
		return err
	case <-sessionCtx.Done():
		return sessionCtx.Err()
	}
}

// runHeartbeat pings on a fixed cadence until the session ends.
func (g *Gateway) runHeartbeat(ctx context.Context, conn *websocket.Conn, out chan<- error) {
	ticker := time.NewTicker(g.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.writeFrame(conn, controlFrame{Type: "Ping"}); err != nil {
				out <- fmt.Errorf("gateway: heartbeat: %w", err)
				return
			}
		}
	}
}

// runReadLoop pumps frames off the wire. Session control frames are
// handled here; everything else is an event record for the handler.
func (g *Gateway) runReadLoop(ctx context.Context, conn *websocket.Conn, onAuthenticated func(), out chan<- error) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			out <- fmt.Errorf("gateway: read: %w", err)
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			g.logger.DebugContext(ctx, "undecodable gateway frame, dropping", "error", err)
			continue
		}

		switch frame.Type {
		case "Authenticated":
			g.logger.InfoContext(ctx, "gateway session authenticated")
			if onAuthenticated != nil {
				onAuthenticated()
			}
		case "Pong":
		case "Error":
			out <- fmt.Errorf("gateway: %w", &SessionError{Reason: frame.Error})
			return
		default:
			if g.handler == nil {
				continue
			}
			if err := g.handler(ctx, json.RawMessage(raw)); err != nil {
				g.logger.WarnContext(ctx, "event record failed",
					"type", frame.Type, "error", err)
			}
		}
	}
}

// SessionError is an error frame sent by the node, typically an
// authentication rejection.
type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error: %s", e.Reason)
}

// IsSessionError reports whether err wraps a node-sent error frame.
func IsSessionError(err error) bool {
	var sessionErr *SessionError
	return errors.As(err, &sessionErr)
}
