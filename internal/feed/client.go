// Package feed maintains the live connection to the market-data stream and
// delivers decoded orderbook snapshots to the ingestion pipeline over a
// bounded channel. Connection-level failures are retried with a fixed delay
// up to a configured budget; a single bad frame is logged and dropped and
// never disturbs the connection.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/metrics"
)

const dialTimeout = 15 * time.Second

// Conn is the subset of a websocket connection the receive loop needs.
// *websocket.Conn satisfies it; tests substitute scripted connections.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// DialFunc establishes one connection attempt.
type DialFunc func(ctx context.Context) (Conn, error)

// Config holds the transport parameters.
type Config struct {
	URL                  string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	Buffer               int // frame channel capacity
}

// Option customizes a Client.
type Option func(*Client)

// WithDialFunc overrides how connections are established. Tests use this to
// script connect failures and drops without a network.
func WithDialFunc(dial DialFunc) Option {
	return func(c *Client) { c.dial = dial }
}

// WithStateObserver registers a callback invoked on every state transition,
// re-entries into Reconnecting included.
func WithStateObserver(fn func(State)) Option {
	return func(c *Client) { c.onState = fn }
}

// WithMetrics attaches the instrumentation registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) { c.metrics = reg }
}

// Client is the stream transport. Run drives the connection state machine
// until the context is cancelled, Close is called, or the reconnect budget
// is exhausted (terminal Failed, surfaced as domain.ErrTransportFailed).
type Client struct {
	cfg     Config
	dial    DialFunc
	logger  *slog.Logger
	metrics *metrics.Registry
	onState func(State)

	frames chan *domain.OrderBookSnapshot
	state  atomic.Int32

	attempts int    // consecutive failed attempts; reset on Receiving
	session  string // uuid of the current physical connection

	mu        sync.Mutex
	conn      Conn
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a Client. Buffer defaults to 256, the dialer to a
// gorilla/websocket dialer against cfg.URL.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	c := &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "feed")),
		frames: make(chan *domain.OrderBookSnapshot, cfg.Buffer),
		done:   make(chan struct{}),
	}
	c.dial = c.defaultDial
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Frames returns the channel of decoded snapshots, closed when Run returns.
func (c *Client) Frames() <-chan *domain.OrderBookSnapshot {
	return c.frames
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Close stops the transport and releases the connection. Safe to call more
// than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

// Run connects and receives until the context is cancelled (returns ctx
// error), Close is called (returns nil), or reconnect attempts exhaust
// (returns domain.ErrTransportFailed, state Failed).
func (c *Client) Run(ctx context.Context) error {
	defer close(c.frames)

	c.setState(StateConnecting)
	conn, err := c.dialOnce(ctx)
	if err == nil {
		c.sessionUp(conn)
	} else {
		c.logger.Warn("initial connect failed", slog.String("error", err.Error()))
	}

	for {
		if err != nil {
			conn, err = c.reconnect(ctx)
			if err != nil {
				return err
			}
		}

		err = c.receive(ctx, conn)
		conn.Close()
		c.clearConn()

		switch {
		case ctx.Err() != nil:
			c.setState(StateDisconnected)
			return ctx.Err()
		case errors.Is(err, domain.ErrTransportClosed):
			c.setState(StateDisconnected)
			return nil
		}
		c.logger.Warn("stream disconnected",
			slog.String("session", c.session),
			slog.String("error", err.Error()),
		)
	}
}

// receive reads frames until a connection-level error. Malformed frames are
// dropped here and never returned as errors.
func (c *Client) receive(ctx context.Context, conn Conn) error {
	c.setState(StateReceiving)
	c.attempts = 0

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return domain.ErrTransportClosed
			default:
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		c.metrics.FrameReceived()

		snap, err := decodeFrame(raw)
		if err != nil {
			c.metrics.FrameDropped("malformed")
			c.logger.Warn("dropping malformed frame",
				slog.String("session", c.session),
				slog.String("error", err.Error()),
			)
			continue
		}

		select {
		case c.frames <- snap:
		case <-c.done:
			return domain.ErrTransportClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reconnect runs the bounded retry cycle: fixed delay, attempt counter,
// re-dial. A failed dial re-enters Reconnecting; exceeding the budget is
// terminal.
func (c *Client) reconnect(ctx context.Context) (Conn, error) {
	for {
		c.attempts++
		if c.attempts > c.cfg.MaxReconnectAttempts {
			c.setState(StateFailed)
			c.logger.Error("reconnect attempts exhausted",
				slog.Int("max_attempts", c.cfg.MaxReconnectAttempts),
			)
			return nil, domain.ErrTransportFailed
		}

		c.setState(StateReconnecting)
		c.metrics.ReconnectAttempt()
		c.logger.Info("reconnecting",
			slog.Int("attempt", c.attempts),
			slog.Int("max_attempts", c.cfg.MaxReconnectAttempts),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, domain.ErrTransportClosed
		case <-time.After(c.cfg.ReconnectDelay):
		}

		conn, err := c.dialOnce(ctx)
		if err != nil {
			c.logger.Warn("reconnect attempt failed",
				slog.Int("attempt", c.attempts),
				slog.String("error", err.Error()),
			)
			continue
		}

		c.setState(StateConnecting)
		c.sessionUp(conn)
		return conn, nil
	}
}

// dialOnce performs a single bounded connection attempt.
func (c *Client) dialOnce(ctx context.Context) (Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	return c.dial(dctx)
}

// sessionUp records the new connection and assigns it a session ID.
func (c *Client) sessionUp(conn Conn) {
	c.session = uuid.NewString()
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)
	c.logger.Info("stream connected",
		slog.String("url", c.cfg.URL),
		slog.String("session", c.session),
	)
}

func (c *Client) clearConn() {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	c.metrics.SetTransportState(s.String())
	if c.onState != nil {
		c.onState(s)
	}
}

// defaultDial connects to cfg.URL over websocket.
func (c *Client) defaultDial(ctx context.Context) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
