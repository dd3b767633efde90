package handler

import (
	"log/slog"
	"net/http"

	"github.com/Anurag2509-fledor/trade-simulator/internal/query"
)

// defaultQuantityUSD is used when the caller omits quantity_usd, matching
// the simulator's default order size.
const defaultQuantityUSD = 100.0

// EstimateHandler serves the trading-cost estimate endpoints. All endpoints
// are pure reads against the query facade; they never trigger model
// recomputation.
type EstimateHandler struct {
	facade *query.Facade
	logger *slog.Logger
}

// NewEstimateHandler creates an EstimateHandler.
func NewEstimateHandler(facade *query.Facade, logger *slog.Logger) *EstimateHandler {
	return &EstimateHandler{
		facade: facade,
		logger: logger.With(slog.String("handler", "estimates")),
	}
}

// Estimates returns the full cost summary for an order.
// GET /api/estimates?quantity_usd=100&fee_tier=Tier+1
func (h *EstimateHandler) Estimates(w http.ResponseWriter, r *http.Request) {
	qty, err := floatQuery(r, "quantity_usd", defaultQuantityUSD)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tier := r.URL.Query().Get("fee_tier")
	if tier == "" {
		tier = "Tier 1"
	}
	writeJSON(w, http.StatusOK, h.facade.CostSummary(qty, tier))
}

// Impact returns the expected market impact percentage.
// GET /api/impact?quantity_usd=100
func (h *EstimateHandler) Impact(w http.ResponseWriter, r *http.Request) {
	qty, err := floatQuery(r, "quantity_usd", defaultQuantityUSD)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"quantity_usd": qty,
		"impact_pct":   h.facade.LatestImpact(qty),
	})
}

// Slippage returns the expected slippage percentage.
// GET /api/slippage?quantity_usd=100
func (h *EstimateHandler) Slippage(w http.ResponseWriter, r *http.Request) {
	qty, err := floatQuery(r, "quantity_usd", defaultQuantityUSD)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"quantity_usd": qty,
		"slippage_pct": h.facade.LatestSlippage(qty),
	})
}

// MakerTaker returns the predicted maker/taker split.
// GET /api/makertaker
func (h *EstimateHandler) MakerTaker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facade.LatestMakerTakerSplit())
}

// Trajectory returns the optimal execution schedule for a base quantity.
// GET /api/trajectory?quantity=1.5&horizon_days=1
func (h *EstimateHandler) Trajectory(w http.ResponseWriter, r *http.Request) {
	qty, err := floatQuery(r, "quantity", 1.0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	horizon, err := floatQuery(r, "horizon_days", 1.0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if horizon == 0 {
		writeError(w, http.StatusBadRequest, "parameter \"horizon_days\": must be > 0")
		return
	}
	writeJSON(w, http.StatusOK, h.facade.Trajectory(qty, horizon))
}
