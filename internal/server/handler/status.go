package handler

import (
	"log/slog"
	"net/http"

	"github.com/Anurag2509-fledor/trade-simulator/internal/feed"
	"github.com/Anurag2509-fledor/trade-simulator/internal/pipeline"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// StatusHandler reports pipeline health: transport state, window fill, and
// ingestion performance.
type StatusHandler struct {
	transport *feed.Client
	pipe      *pipeline.Pipeline
	store     *window.Store
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(transport *feed.Client, pipe *pipeline.Pipeline, store *window.Store, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		transport: transport,
		pipe:      pipe,
		store:     store,
		logger:    logger.With(slog.String("handler", "status")),
	}
}

// Status returns the pipeline's runtime state.
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	view := h.store.CurrentView()
	avgLatency, tickRate := h.pipe.Stats()

	writeJSON(w, http.StatusOK, map[string]any{
		"transport_state":  h.transport.State().String(),
		"window_size":      len(view.Snapshots),
		"window_capacity":  h.store.Capacity(),
		"window_version":   view.Version,
		"volatility":       view.Volatility,
		"mid_price":        view.MidPrice(),
		"avg_ingest_ms":    float64(avgLatency.Microseconds()) / 1000,
		"ticks_per_second": tickRate,
	})
}
