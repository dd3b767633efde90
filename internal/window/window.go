// Package window maintains the bounded rolling history of orderbook
// snapshots shared by every cost model, together with the common volatility
// estimate derived from it.
package window

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
)

// DefaultCapacity bounds the rolling history when no capacity is configured.
const DefaultCapacity = 1000

// DefaultAnnualization is the trading-day constant applied to the stddev of
// log returns.
const DefaultAnnualization = 252

// View is an immutable, versioned read view of the window. A new View is
// published on every successful insert; readers holding a View never observe
// a partially applied update.
type View struct {
	Snapshots  []*domain.OrderBookSnapshot
	Volatility float64
	Version    uint64
}

// Latest returns the most recent snapshot in the view, or nil when empty.
func (v *View) Latest() *domain.OrderBookSnapshot {
	if len(v.Snapshots) == 0 {
		return nil
	}
	return v.Snapshots[len(v.Snapshots)-1]
}

// MidPrice returns the most recent mid price, or 0 when the view is empty.
func (v *View) MidPrice() float64 {
	if s := v.Latest(); s != nil {
		return s.MidPrice
	}
	return 0
}

// Store owns the snapshot history. It is written by the single ingestion
// goroutine and read concurrently by the models and the query facade.
type Store struct {
	capacity      int
	annualization float64

	mu    sync.Mutex // serializes writers; readers go through view
	snaps []*domain.OrderBookSnapshot
	view  atomic.Pointer[View]
}

// New creates a Store. Non-positive capacity falls back to DefaultCapacity,
// non-positive annualization to DefaultAnnualization.
func New(capacity int, annualization float64) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if annualization <= 0 {
		annualization = DefaultAnnualization
	}
	s := &Store{
		capacity:      capacity,
		annualization: annualization,
	}
	s.view.Store(&View{})
	return s
}

// Insert validates snap and appends it to the window, evicting the oldest
// entry when over capacity, then publishes a fresh View with a recomputed
// volatility estimate. A nil or invalid snapshot is rejected and the prior
// state, including the published View, is left untouched.
func (s *Store) Insert(snap *domain.OrderBookSnapshot) error {
	if snap == nil {
		return domain.ErrEmptyBook
	}
	// Re-check the book invariants: snapshots normally come from
	// NewOrderBookSnapshot, but the store is fail-soft regardless of the
	// producer.
	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		return domain.ErrEmptyBook
	}
	if snap.BestBid() >= snap.BestAsk() {
		return domain.ErrCrossedBook
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snaps = append(s.snaps, snap)
	if len(s.snaps) > s.capacity {
		// Drop the oldest; copy so old Views keep their backing array.
		trimmed := make([]*domain.OrderBookSnapshot, len(s.snaps)-1)
		copy(trimmed, s.snaps[1:])
		s.snaps = trimmed
	}

	prev := s.view.Load()
	next := &View{
		Snapshots:  s.snaps,
		Volatility: s.computeVolatility(),
		Version:    prev.Version + 1,
	}
	s.view.Store(next)
	return nil
}

// CurrentView returns the latest published View. The View and everything
// reachable from it is immutable.
func (s *Store) CurrentView() *View {
	return s.view.Load()
}

// Snapshots returns the snapshots of the current View, oldest first.
func (s *Store) Snapshots() []*domain.OrderBookSnapshot {
	return s.view.Load().Snapshots
}

// Len returns the number of snapshots currently held.
func (s *Store) Len() int {
	return len(s.view.Load().Snapshots)
}

// Capacity returns the configured window bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// Volatility returns the annualized volatility of the current View: the
// population standard deviation of consecutive log mid-price returns scaled
// by the square root of the annualization constant. It is 0 until the
// window holds at least two snapshots.
func (s *Store) Volatility() float64 {
	return s.view.Load().Volatility
}

// computeVolatility recomputes volatility from s.snaps. Caller holds s.mu.
func (s *Store) computeVolatility() float64 {
	if len(s.snaps) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(s.snaps)-1)
	for i := 1; i < len(s.snaps); i++ {
		prev := s.snaps[i-1].MidPrice
		curr := s.snaps[i].MidPrice
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	if len(returns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(s.annualization)
}
