package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
)

var errConnDropped = errors.New("connection dropped")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedConn serves a fixed list of frames, then blocks until an error is
// queued. Close queues one so a blocked read unblocks.
type scriptedConn struct {
	frames [][]byte
	i      int
	errc   chan error
}

func newScriptedConn(frames ...[]byte) *scriptedConn {
	return &scriptedConn{frames: frames, errc: make(chan error, 1)}
}

// dropAfterFrames pre-queues a connection error so the conn fails as soon as
// its frames are exhausted.
func dropAfterFrames(frames ...[]byte) *scriptedConn {
	c := newScriptedConn(frames...)
	c.errc <- errConnDropped
	return c
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if c.i < len(c.frames) {
		f := c.frames[c.i]
		c.i++
		return 1, f, nil
	}
	return 0, nil, <-c.errc
}

func (c *scriptedConn) Close() error {
	select {
	case c.errc <- errConnDropped:
	default:
	}
	return nil
}

// scriptDialer replays a fixed sequence of dial outcomes.
type scriptDialer struct {
	mu      sync.Mutex
	results []func() (Conn, error)
	calls   int
}

func (d *scriptDialer) dial(context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.calls >= len(d.results) {
		d.calls++
		return nil, errors.New("dial past end of script")
	}
	r := d.results[d.calls]
	d.calls++
	return r()
}

func (d *scriptDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stateRecorder collects state transitions in order.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) observe(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *stateRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func validFrame(t *testing.T) []byte {
	t.Helper()
	return []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["100", "1"]], "asks": [["101", "1"]]}`)
}

func testConfig() Config {
	return Config{
		URL:                  "wss://example.test/stream",
		ReconnectDelay:       time.Millisecond,
		MaxReconnectAttempts: 5,
		Buffer:               16,
	}
}

func TestClientReconnectsAfterDrop(t *testing.T) {
	frame := validFrame(t)
	dialer := &scriptDialer{results: []func() (Conn, error){
		func() (Conn, error) { return dropAfterFrames(frame, frame, frame), nil },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return newScriptedConn(), nil },
	}}
	rec := &stateRecorder{}

	c := NewClient(testConfig(), testLogger(),
		WithDialFunc(dialer.dial),
		WithStateObserver(rec.observe),
	)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	// All three frames from the first session arrive in order.
	for i := 0; i < 3; i++ {
		select {
		case snap := <-c.Frames():
			assert.Equal(t, 100.5, snap.MidPrice)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}

	// The drop triggers the retry cycle until the fourth dial succeeds.
	require.Eventually(t, func() bool {
		return dialer.dialCount() == 4 && c.State() == StateReceiving
	}, time.Second, time.Millisecond)

	c.Close()
	require.NoError(t, <-done)

	assert.Equal(t, []State{
		StateConnecting,
		StateConnected,
		StateReceiving,
		StateReconnecting,
		StateReconnecting,
		StateReconnecting,
		StateConnecting,
		StateConnected,
		StateReceiving,
		StateDisconnected,
	}, rec.snapshot())
}

func TestClientFailsAfterReconnectBudget(t *testing.T) {
	dialer := &scriptDialer{results: []func() (Conn, error){
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
		func() (Conn, error) { return nil, errors.New("dial refused") },
	}}
	rec := &stateRecorder{}

	c := NewClient(testConfig(), testLogger(),
		WithDialFunc(dialer.dial),
		WithStateObserver(rec.observe),
	)

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransportFailed)
	assert.Equal(t, StateFailed, c.State())

	// One initial attempt plus the full retry budget, and not one more.
	assert.Equal(t, 6, dialer.dialCount())

	assert.Equal(t, []State{
		StateConnecting,
		StateReconnecting,
		StateReconnecting,
		StateReconnecting,
		StateReconnecting,
		StateReconnecting,
		StateFailed,
	}, rec.snapshot())

	// The frame channel is closed on return.
	_, ok := <-c.Frames()
	assert.False(t, ok)
}

func TestClientDropsMalformedFrameWithoutReconnect(t *testing.T) {
	good := validFrame(t)
	bad := []byte(`{"timestamp": "not a time", "bids": [], "asks": []}`)
	dialer := &scriptDialer{results: []func() (Conn, error){
		func() (Conn, error) { return newScriptedConn(bad, good), nil },
	}}

	c := NewClient(testConfig(), testLogger(), WithDialFunc(dialer.dial))

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	// Only the valid frame comes through; the bad one is dropped silently
	// and the connection stays up.
	select {
	case snap := <-c.Frames():
		assert.Equal(t, 100.5, snap.MidPrice)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	assert.Equal(t, 1, dialer.dialCount())
	assert.Equal(t, StateReceiving, c.State())

	c.Close()
	require.NoError(t, <-done)
}

func TestClientContextCancellation(t *testing.T) {
	dialer := &scriptDialer{results: []func() (Conn, error){
		func() (Conn, error) { return newScriptedConn(), nil },
	}}

	c := NewClient(testConfig(), testLogger(), WithDialFunc(dialer.dial))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return c.State() == StateReceiving
	}, time.Second, time.Millisecond)

	cancel()
	c.Close() // unblock the scripted read

	err := <-done
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}
