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

// MakerTakerConfig holds the logistic-classifier hyperparameters.
type MakerTakerConfig struct {
	MaxIterations int           // solver iteration cap
	RefitInterval time.Duration // minimum time between fits
}

// makerTakerFit is one immutable fitted parameter set.
type makerTakerFit struct {
	weights []float64
	bias    float64
	scale   scaler
}

// MakerTakerModel predicts the maker/taker mix an order would realize. It
// fits a logistic classifier for "mid price increased on this step" over
// window transitions and reports the up-move probability directly as the
// maker proportion. That mapping is a modeling assumption kept for contract
// compatibility, not a fact of market microstructure; see DESIGN.md.
type MakerTakerModel struct {
	cfg    MakerTakerConfig
	store  *window.Store
	logger *slog.Logger

	fit     atomic.Pointer[makerTakerFit]
	lastFit atomic.Int64 // unix nanos, 0 = never fitted
}

// NewMakerTakerModel creates a MakerTakerModel with neutral parameters.
func NewMakerTakerModel(cfg MakerTakerConfig, store *window.Store, logger *slog.Logger) *MakerTakerModel {
	return &MakerTakerModel{
		cfg:    cfg,
		store:  store,
		logger: logger.With(slog.String("component", "maker_taker_model")),
	}
}

// Name identifies the model in scheduler logs and metrics.
func (m *MakerTakerModel) Name() string { return "maker_taker" }

// MinInterval returns the refit gating interval.
func (m *MakerTakerModel) MinInterval() time.Duration { return m.cfg.RefitInterval }

// LastFitTime returns when the fit step last ran, zero time if never.
func (m *MakerTakerModel) LastFitTime() time.Time {
	ns := m.lastFit.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Fit refits the classifier on the given view, skipping silently below the
// minimum history. Failures leave the previous fit intact; lastFitTime is
// recorded regardless of outcome.
func (m *MakerTakerModel) Fit(v *window.View, now time.Time) error {
	m.lastFit.Store(now.UnixNano())

	if len(v.Snapshots) < minFitHistory {
		return nil
	}
	x, y := makerTakerDataset(v)
	if len(x) < 2 {
		return fmt.Errorf("maker_taker: %w: %d usable transitions", domain.ErrInsufficientData, len(x))
	}

	scale := fitScaler(x)
	xs := scale.transformAll(x)

	weights, bias := fitLogistic(xs, y, m.cfg.MaxIterations)
	if !finite(append(append([]float64{}, weights...), bias)...) {
		return fmt.Errorf("maker_taker: fit diverged")
	}

	m.fit.Store(&makerTakerFit{weights: weights, bias: bias, scale: scale})
	m.logger.Debug("maker/taker model refitted",
		slog.Int("samples", len(xs)),
		slog.Uint64("window_version", v.Version),
	)
	return nil
}

// Predict returns the maker/taker split, in percent summing to 100. Cold
// start (no fit yet, or window below minimum history) returns 50/50.
func (m *MakerTakerModel) Predict() domain.MakerTakerSplit {
	view := m.store.CurrentView()
	latest := view.Latest()
	fit := m.fit.Load()
	if fit == nil || latest == nil || len(view.Snapshots) < minFitHistory {
		return domain.MakerTakerSplit{MakerPct: 50, TakerPct: 50}
	}

	features := fit.scale.transform([]float64{
		latest.RelativeSpread(),
		volumeRatio(latest.BidVolume(), latest.AskVolume()),
		view.Volatility,
	})
	probUp := sigmoid(dot(fit.weights, features) + fit.bias)
	maker := probUp * 100
	return domain.MakerTakerSplit{MakerPct: maker, TakerPct: 100 - maker}
}

// fitLogistic minimizes mean log-loss by full-batch gradient descent,
// stopping at the iteration cap or when the gradient norm collapses.
func fitLogistic(x [][]float64, y []float64, maxIter int) ([]float64, float64) {
	const (
		lr  = 0.1
		tol = 1e-8
	)
	if maxIter <= 0 {
		maxIter = 1000
	}
	cols := len(x[0])
	n := float64(len(x))
	weights := make([]float64, cols)
	var bias float64

	gradW := make([]float64, cols)
	for t := 0; t < maxIter; t++ {
		for j := range gradW {
			gradW[j] = 0
		}
		var gradB float64

		for i, row := range x {
			err := sigmoid(dot(weights, row)+bias) - y[i]
			for j, v := range row {
				gradW[j] += err * v
			}
			gradB += err
		}

		var norm float64
		for j := range weights {
			g := gradW[j] / n
			weights[j] -= lr * g
			norm += g * g
		}
		gb := gradB / n
		bias -= lr * gb
		norm += gb * gb

		if math.Sqrt(norm) < tol {
			break
		}
	}
	return weights, bias
}
