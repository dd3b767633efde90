// Package scheduler gates when each online model retrains. Gating is purely
// time-based and decoupled from the ingestion rate: every successful window
// insert offers a refit opportunity, taken only when the model's minimum
// interval has elapsed since its previous fit.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// Clock supplies the scheduler's notion of now. Injectable so interval
// behavior is deterministic in tests.
type Clock func() time.Time

// Refittable is an online model the scheduler drives. The model owns its
// fitted state; the scheduler only decides when Fit runs.
type Refittable interface {
	Name() string
	Fit(v *window.View, now time.Time) error
	LastFitTime() time.Time
	MinInterval() time.Duration
}

// Scheduler checks each registered model on every insert and runs the due
// fit steps inline on the caller's (the single writer's) goroutine. Fit
// errors are logged and absorbed; they never propagate to ingestion.
type Scheduler struct {
	models []Refittable
	clock  Clock
	logger *slog.Logger
	onFit  func(model string, err error)
}

// New creates a Scheduler. A nil clock defaults to time.Now.
func New(models []Refittable, clock Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		models: models,
		clock:  clock,
		logger: logger.With(slog.String("component", "refit_scheduler")),
	}
}

// OnFit registers an observer called after every executed fit step, fit
// failures included. Used for metrics.
func (s *Scheduler) OnFit(fn func(model string, err error)) {
	s.onFit = fn
}

// OnInsert offers a refit opportunity against the given view. A model fits
// when it has never fitted or its minimum interval has elapsed.
func (s *Scheduler) OnInsert(v *window.View) {
	now := s.clock()
	for _, m := range s.models {
		last := m.LastFitTime()
		if !last.IsZero() && now.Sub(last) < m.MinInterval() {
			continue
		}
		err := m.Fit(v, now)
		if err != nil {
			s.logger.Warn("model fit failed, keeping previous fit",
				slog.String("model", m.Name()),
				slog.String("error", err.Error()),
			)
		}
		if s.onFit != nil {
			s.onFit(m.Name(), err)
		}
	}
}
