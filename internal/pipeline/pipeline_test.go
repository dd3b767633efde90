package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/scheduler"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bookAt(t *testing.T, mid float64) *domain.OrderBookSnapshot {
	t.Helper()
	snap, err := domain.NewOrderBookSnapshot(time.Now(),
		[]domain.PriceLevel{{Price: mid - 0.5, Qty: 10}},
		[]domain.PriceLevel{{Price: mid + 0.5, Qty: 10}},
	)
	require.NoError(t, err)
	return snap
}

// countingModel counts how many refit opportunities reached it.
type countingModel struct {
	fits int
	last time.Time
}

func (m *countingModel) Name() string { return "counting" }

func (m *countingModel) LastFitTime() time.Time { return m.last }

func (m *countingModel) MinInterval() time.Duration { return 0 }

func (m *countingModel) Fit(_ *window.View, now time.Time) error {
	m.last = now
	m.fits++
	return nil
}

func TestPipelineAppliesFramesInOrder(t *testing.T) {
	store := window.New(100, 252)
	model := &countingModel{}
	sched := scheduler.New([]scheduler.Refittable{model}, nil, testLogger())

	frames := make(chan *domain.OrderBookSnapshot, 8)
	p := New(store, sched, frames, nil, testLogger())

	frames <- bookAt(t, 100)
	frames <- bookAt(t, 101)
	frames <- bookAt(t, 102)
	close(frames)

	require.NoError(t, p.Run(context.Background()))

	v := store.CurrentView()
	require.Len(t, v.Snapshots, 3)
	assert.Equal(t, 100.0, v.Snapshots[0].MidPrice)
	assert.Equal(t, 102.0, v.Snapshots[2].MidPrice)

	// Every successful insert offered a refit opportunity.
	assert.Equal(t, 3, model.fits)
}

func TestPipelineRejectsInvalidSnapshotsFailSoft(t *testing.T) {
	store := window.New(100, 252)
	sched := scheduler.New(nil, nil, testLogger())

	frames := make(chan *domain.OrderBookSnapshot, 8)
	p := New(store, sched, frames, nil, testLogger())

	crossed := &domain.OrderBookSnapshot{
		Timestamp: time.Now(),
		Bids:      []domain.PriceLevel{{Price: 101, Qty: 1}},
		Asks:      []domain.PriceLevel{{Price: 100, Qty: 1}},
	}

	frames <- bookAt(t, 100)
	frames <- crossed
	frames <- bookAt(t, 102)
	close(frames)

	require.NoError(t, p.Run(context.Background()))

	// The bad snapshot is skipped and the loop keeps going.
	v := store.CurrentView()
	require.Len(t, v.Snapshots, 2)
	assert.Equal(t, 100.0, v.Snapshots[0].MidPrice)
	assert.Equal(t, 102.0, v.Snapshots[1].MidPrice)
}

func TestPipelineStopsOnContextCancel(t *testing.T) {
	store := window.New(100, 252)
	sched := scheduler.New(nil, nil, testLogger())

	frames := make(chan *domain.OrderBookSnapshot)
	p := New(store, sched, frames, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop on cancel")
	}
}

func TestPipelineStats(t *testing.T) {
	store := window.New(100, 252)
	sched := scheduler.New(nil, nil, testLogger())

	frames := make(chan *domain.OrderBookSnapshot, 8)
	p := New(store, sched, frames, nil, testLogger())

	avg, rate := p.Stats()
	assert.Equal(t, time.Duration(0), avg)
	assert.Equal(t, 0.0, rate)

	frames <- bookAt(t, 100)
	frames <- bookAt(t, 101)
	close(frames)
	require.NoError(t, p.Run(context.Background()))

	avg, _ = p.Stats()
	assert.GreaterOrEqual(t, avg, time.Duration(0))
}
