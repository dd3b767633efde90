// Package pipeline runs the single-writer ingestion loop: it drains decoded
// frames from the transport channel in arrival order, applies them to the
// rolling window, and offers each successful insert to the refit scheduler.
// Invalid snapshots are rejected fail-soft; nothing on this path ever stops
// the loop except context cancellation or the channel closing.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/metrics"
	"github.com/Anurag2509-fledor/trade-simulator/internal/scheduler"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// Pipeline is the ingestion-apply step between the transport and the window.
type Pipeline struct {
	store   *window.Store
	sched   *scheduler.Scheduler
	frames  <-chan *domain.OrderBookSnapshot
	metrics *metrics.Registry
	logger  *slog.Logger
	perf    perfTracker
}

// New creates a Pipeline consuming the given frame channel.
func New(store *window.Store, sched *scheduler.Scheduler, frames <-chan *domain.OrderBookSnapshot, reg *metrics.Registry, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		sched:   sched,
		frames:  frames,
		metrics: reg,
		logger:  logger.With(slog.String("component", "pipeline")),
	}
}

// Run applies frames until the context is cancelled or the frame channel
// closes (transport shut down).
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("ingestion pipeline started")
	defer p.logger.Info("ingestion pipeline stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-p.frames:
			if !ok {
				return nil
			}
			p.apply(snap)
		}
	}
}

// apply inserts one snapshot and triggers due refits. In-flight fits run to
// completion on this goroutine; they are short and bounded.
func (p *Pipeline) apply(snap *domain.OrderBookSnapshot) {
	start := time.Now()

	if err := p.store.Insert(snap); err != nil {
		p.metrics.FrameDropped("rejected")
		p.logger.Warn("snapshot rejected",
			slog.Time("frame_time", snap.Timestamp),
			slog.String("error", err.Error()),
		)
		return
	}

	view := p.store.CurrentView()
	p.metrics.ObserveWindow(len(view.Snapshots), view.Volatility)
	p.sched.OnInsert(view)

	now := time.Now()
	p.perf.record(now, now.Sub(start))
	p.metrics.ObserveIngest(now.Sub(start).Seconds(), p.perf.tickRate())
}

// Stats reports ingestion performance for the status surface.
func (p *Pipeline) Stats() (avgLatency time.Duration, tickRate float64) {
	return p.perf.avgLatency(), p.perf.tickRate()
}
