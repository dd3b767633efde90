package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/models"
	"github.com/Anurag2509-fledor/trade-simulator/internal/query"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandlerWithBook(t *testing.T, mids ...float64) *EstimateHandler {
	t.Helper()
	store := window.New(100, 252)
	for _, mid := range mids {
		snap, err := domain.NewOrderBookSnapshot(time.Now(),
			[]domain.PriceLevel{{Price: mid - 0.5, Qty: 10}},
			[]domain.PriceLevel{{Price: mid + 0.5, Qty: 10}},
		)
		require.NoError(t, err)
		require.NoError(t, store.Insert(snap))
	}
	impact := models.NewImpactModel(models.ImpactConfig{Eta: 0.1, Gamma: 0.1, RiskAversion: 0.1}, store)
	slippage := models.NewSlippageModel(models.SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())
	makerTaker := models.NewMakerTakerModel(models.MakerTakerConfig{MaxIterations: 1000, RefitInterval: time.Minute}, store, testLogger())
	return NewEstimateHandler(query.New(store, impact, slippage, makerTaker, nil), testLogger())
}

func TestEstimatesEndpoint(t *testing.T) {
	h := newHandlerWithBook(t, 100, 101, 102)

	req := httptest.NewRequest(http.MethodGet, "/api/estimates?quantity_usd=500&fee_tier=Tier+2", nil)
	rr := httptest.NewRecorder()
	h.Estimates(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var sum domain.CostSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 500.0, sum.QuantityUSD)
	assert.Equal(t, "Tier 2", sum.FeeTier)
	assert.Equal(t, 102.0, sum.MidPrice)
	assert.Equal(t, 3, sum.WindowSize)
}

func TestEstimatesDefaultsQuantity(t *testing.T) {
	h := newHandlerWithBook(t, 100)

	rr := httptest.NewRecorder()
	h.Impact(rr, httptest.NewRequest(http.MethodGet, "/api/impact", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]float64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, defaultQuantityUSD, body["quantity_usd"])
}

func TestEstimatesRejectsBadQuantity(t *testing.T) {
	h := newHandlerWithBook(t, 100)

	for _, q := range []string{"quantity_usd=abc", "quantity_usd=-5"} {
		rr := httptest.NewRecorder()
		h.Estimates(rr, httptest.NewRequest(http.MethodGet, "/api/estimates?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestTrajectoryRejectsZeroHorizon(t *testing.T) {
	h := newHandlerWithBook(t, 100)

	rr := httptest.NewRecorder()
	h.Trajectory(rr, httptest.NewRequest(http.MethodGet, "/api/trajectory?quantity=10&horizon_days=0", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTrajectoryEndpoint(t *testing.T) {
	h := newHandlerWithBook(t, 100)

	rr := httptest.NewRecorder()
	h.Trajectory(rr, httptest.NewRequest(http.MethodGet, "/api/trajectory?quantity=50&horizon_days=1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var traj domain.Trajectory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &traj))
	require.Len(t, traj.Steps, 101)
	assert.Equal(t, 0.0, traj.Steps[0])
	assert.InDelta(t, 50.0, traj.Steps[100], 1e-9)
}

func TestMakerTakerEndpointColdStart(t *testing.T) {
	h := newHandlerWithBook(t)

	rr := httptest.NewRecorder()
	h.MakerTaker(rr, httptest.NewRequest(http.MethodGet, "/api/makertaker", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var split domain.MakerTakerSplit
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &split))
	assert.Equal(t, 50.0, split.MakerPct)
	assert.Equal(t, 50.0, split.TakerPct)
}
