package pipeline

import (
	"sync"
	"time"
)

const (
	latencySamples = 100
	tickRateWindow = 60 * time.Second
)

// perfTracker keeps a small rolling sample of ingest latencies and the tick
// arrival times over the trailing minute.
type perfTracker struct {
	mu        sync.Mutex
	latencies []time.Duration
	ticks     []time.Time
}

// record adds one ingest observation.
func (p *perfTracker) record(now time.Time, latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latencies = append(p.latencies, latency)
	if len(p.latencies) > latencySamples {
		p.latencies = p.latencies[1:]
	}

	p.ticks = append(p.ticks, now)
	cutoff := now.Add(-tickRateWindow)
	i := 0
	for i < len(p.ticks) && p.ticks[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		p.ticks = p.ticks[i:]
	}
}

// tickRate returns snapshots per second over the trailing minute.
func (p *perfTracker) tickRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ticks) < 2 {
		return 0
	}
	span := p.ticks[len(p.ticks)-1].Sub(p.ticks[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(p.ticks)-1) / span
}

// avgLatency returns the mean of the retained latency samples.
func (p *perfTracker) avgLatency() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range p.latencies {
		sum += d
	}
	return sum / time.Duration(len(p.latencies))
}
