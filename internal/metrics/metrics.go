// Package metrics holds the Prometheus instrumentation for the simulator
// pipeline. All recording methods are nil-safe so components can run
// uninstrumented in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// transportStates enumerates the connection states exported as a one-hot
// gauge vector.
var transportStates = []string{
	"disconnected", "connecting", "connected", "receiving", "reconnecting", "failed",
}

// Registry holds all Prometheus collectors for the simulator.
type Registry struct {
	reg *prometheus.Registry

	FramesReceived prometheus.Counter
	FramesDropped  *prometheus.CounterVec
	Reconnects     prometheus.Counter
	TransportState *prometheus.GaugeVec

	WindowSize prometheus.Gauge
	Volatility prometheus.Gauge

	Refits        *prometheus.CounterVec
	IngestLatency prometheus.Histogram
	TickRate      prometheus.Gauge
}

// NewRegistry creates and registers all simulator metrics on a fresh
// Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_frames_received_total",
			Help: "Total raw frames read from the stream",
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_frames_dropped_total",
			Help: "Frames dropped without entering the window, by reason",
		}, []string{"reason"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_reconnect_attempts_total",
			Help: "Transport reconnect attempts",
		}),
		TransportState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tradesim_transport_state",
			Help: "Current transport state (one-hot by state label)",
		}, []string{"state"}),

		WindowSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_window_size",
			Help: "Snapshots currently held in the rolling window",
		}),
		Volatility: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_volatility",
			Help: "Annualized volatility estimate from the rolling window",
		}),

		Refits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_model_refits_total",
			Help: "Model fit steps executed, by model and outcome",
		}, []string{"model", "status"}),
		IngestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_ingest_latency_seconds",
			Help:    "Time to apply one snapshot to the window including due refits",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		TickRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_tick_rate",
			Help: "Snapshots ingested per second over the trailing minute",
		}),
	}

	r.reg.MustRegister(
		r.FramesReceived, r.FramesDropped, r.Reconnects, r.TransportState,
		r.WindowSize, r.Volatility,
		r.Refits, r.IngestLatency, r.TickRate,
	)
	return r
}

// Handler returns the /metrics HTTP handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// FrameReceived counts one raw frame read from the stream.
func (r *Registry) FrameReceived() {
	if r == nil {
		return
	}
	r.FramesReceived.Inc()
}

// FrameDropped counts one dropped frame with the given reason.
func (r *Registry) FrameDropped(reason string) {
	if r == nil {
		return
	}
	r.FramesDropped.WithLabelValues(reason).Inc()
}

// ReconnectAttempt counts one transport reconnect attempt.
func (r *Registry) ReconnectAttempt() {
	if r == nil {
		return
	}
	r.Reconnects.Inc()
}

// SetTransportState publishes the current state as a one-hot gauge.
func (r *Registry) SetTransportState(state string) {
	if r == nil {
		return
	}
	for _, s := range transportStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		r.TransportState.WithLabelValues(s).Set(v)
	}
}

// ObserveWindow publishes the window size and volatility after an insert.
func (r *Registry) ObserveWindow(size int, volatility float64) {
	if r == nil {
		return
	}
	r.WindowSize.Set(float64(size))
	r.Volatility.Set(volatility)
}

// RefitResult counts one executed fit step.
func (r *Registry) RefitResult(model string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.Refits.WithLabelValues(model, status).Inc()
}

// ObserveIngest records one ingest latency sample and the current tick rate.
func (r *Registry) ObserveIngest(seconds, tickRate float64) {
	if r == nil {
		return
	}
	r.IngestLatency.Observe(seconds)
	r.TickRate.Set(tickRate)
}
