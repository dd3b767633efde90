package models

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// SlippageConfig holds the quantile-regression hyperparameters.
type SlippageConfig struct {
	Quantile      float64       // target quantile, 0.5 = median
	Alpha         float64       // L1 regularization strength
	RefitInterval time.Duration // minimum time between fits
}

// slippageFit is one immutable fitted parameter set, swapped in whole on
// every successful fit.
type slippageFit struct {
	weights []float64
	bias    float64
	scale   scaler
}

// SlippageModel estimates expected slippage by online quantile regression
// over window transitions. Fitting happens only through Fit, invoked by the
// refit scheduler; Predict is read-only and safe to call concurrently.
type SlippageModel struct {
	cfg    SlippageConfig
	store  *window.Store
	logger *slog.Logger

	fit     atomic.Pointer[slippageFit]
	lastFit atomic.Int64 // unix nanos, 0 = never fitted
}

// NewSlippageModel creates a SlippageModel with neutral parameters.
func NewSlippageModel(cfg SlippageConfig, store *window.Store, logger *slog.Logger) *SlippageModel {
	return &SlippageModel{
		cfg:    cfg,
		store:  store,
		logger: logger.With(slog.String("component", "slippage_model")),
	}
}

// Name identifies the model in scheduler logs and metrics.
func (m *SlippageModel) Name() string { return "slippage" }

// MinInterval returns the refit gating interval.
func (m *SlippageModel) MinInterval() time.Duration { return m.cfg.RefitInterval }

// LastFitTime returns when the fit step last ran, zero time if never.
func (m *SlippageModel) LastFitTime() time.Time {
	ns := m.lastFit.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Fit refits the quantile regression on the given view. The fit is skipped
// silently while the window holds fewer than 10 snapshots. On any failure
// the previously fitted parameters stay in place. lastFitTime is recorded
// regardless of outcome so the scheduler's gating is purely time-based.
func (m *SlippageModel) Fit(v *window.View, now time.Time) error {
	m.lastFit.Store(now.UnixNano())

	if len(v.Snapshots) < minFitHistory {
		return nil
	}
	x, y := slippageDataset(v)
	if len(x) < 2 {
		return fmt.Errorf("slippage: %w: %d usable transitions", domain.ErrInsufficientData, len(x))
	}

	scale := fitScaler(x)
	xs := scale.transformAll(x)

	weights, bias := fitPinball(xs, y, m.cfg.Quantile, m.cfg.Alpha)
	if !finite(append(append([]float64{}, weights...), bias)...) {
		return fmt.Errorf("slippage: fit diverged")
	}

	m.fit.Store(&slippageFit{weights: weights, bias: bias, scale: scale})
	m.logger.Debug("slippage model refitted",
		slog.Int("samples", len(xs)),
		slog.Uint64("window_version", v.Version),
	)
	return nil
}

// Predict returns the expected slippage for an order of quantityBase, as a
// percentage of notional. The raw regression output is scaled down by
// min(1, qty / (0.1 * displayedVolume)) so orders small relative to visible
// depth are penalized less, then reported as an absolute percentage.
// Cold start (no fit yet, or window below minimum history) returns 0.
func (m *SlippageModel) Predict(quantityBase float64) float64 {
	view := m.store.CurrentView()
	latest := view.Latest()
	fit := m.fit.Load()
	if fit == nil || latest == nil || len(view.Snapshots) < minFitHistory {
		return 0
	}

	features := fit.scale.transform([]float64{
		latest.DisplayedVolume(),
		latest.RelativeSpread(),
		view.Volatility,
	})
	raw := dot(fit.weights, features) + fit.bias

	sizeFactor := 1.0
	if dv := latest.DisplayedVolume(); dv > 0 {
		sizeFactor = math.Min(1, quantityBase/(0.1*dv))
	}
	return math.Abs(raw*sizeFactor) * 100
}

// fitPinball minimizes mean pinball loss at quantile tau with L1 strength
// alpha by full-batch subgradient descent under a decaying step size. The
// exact solver is unspecified by contract; only the objective matters.
func fitPinball(x [][]float64, y []float64, tau, alpha float64) ([]float64, float64) {
	const (
		iterations = 500
		lr0        = 0.05
		decay      = 0.05
	)
	cols := len(x[0])
	n := float64(len(x))
	weights := make([]float64, cols)
	var bias float64

	gradW := make([]float64, cols)
	for t := 0; t < iterations; t++ {
		for j := range gradW {
			gradW[j] = 0
		}
		var gradB float64

		for i, row := range x {
			r := y[i] - (dot(weights, row) + bias)
			// d(pinball)/d(pred): -tau above the fit, 1-tau below.
			var g float64
			if r > 0 {
				g = -tau
			} else {
				g = 1 - tau
			}
			for j, v := range row {
				gradW[j] += g * v
			}
			gradB += g
		}

		lr := lr0 / (1 + decay*float64(t))
		for j := range weights {
			weights[j] -= lr * (gradW[j]/n + alpha*sign(weights[j]))
		}
		bias -= lr * (gradB / n)
	}
	return weights, bias
}
