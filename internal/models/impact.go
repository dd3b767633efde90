package models

import (
	"math"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// trajectorySteps is the number of discretization steps for the optimal
// execution schedule.
const trajectorySteps = 100

// ImpactConfig holds the fixed Almgren-Chriss coefficients. None of them
// are learned.
type ImpactConfig struct {
	Eta          float64 // temporary impact coefficient
	Gamma        float64 // permanent impact coefficient
	RiskAversion float64
}

// ImpactModel is the closed-form Almgren-Chriss market impact model. It is
// a deterministic function of the current window state and needs no fitting.
type ImpactModel struct {
	cfg   ImpactConfig
	store *window.Store
}

// NewImpactModel creates an ImpactModel reading prices and volatility from
// the given store.
func NewImpactModel(cfg ImpactConfig, store *window.Store) *ImpactModel {
	return &ImpactModel{cfg: cfg, store: store}
}

// Impact returns the temporary, permanent, and total impact for an order of
// quantityBase executed over horizonDays, each as a fraction of notional.
// All three are zero while no snapshot has arrived yet.
func (m *ImpactModel) Impact(quantityBase, horizonDays float64) domain.ImpactBreakdown {
	price := m.store.CurrentView().MidPrice()
	if price == 0 || horizonDays <= 0 {
		return domain.ImpactBreakdown{}
	}
	temp := m.cfg.Eta * (quantityBase / price) * math.Sqrt(quantityBase/horizonDays)
	perm := m.cfg.Gamma * (quantityBase / price)
	return domain.ImpactBreakdown{
		Temporary: temp,
		Permanent: perm,
		Total:     temp + perm,
	}
}

// OptimalTrajectory returns the Almgren-Chriss optimal execution schedule
// for quantityTotal over horizonDays: the cumulative quantity to have
// executed at each of trajectorySteps+1 equally spaced points (0 at step 0,
// quantityTotal at the final step), plus the expected execution cost.
func (m *ImpactModel) OptimalTrajectory(quantityTotal, horizonDays float64) domain.Trajectory {
	view := m.store.CurrentView()
	if view.MidPrice() == 0 || horizonDays <= 0 {
		return domain.Trajectory{}
	}

	sigma := view.Volatility
	t := horizonDays
	dt := t / trajectorySteps

	// kappa -> 0 degenerates the sinh ramp to a linear schedule, its
	// analytic limit. This covers the cold-start sigma == 0 case.
	var kappa float64
	if m.cfg.Eta > 0 {
		kappa = math.Sqrt(m.cfg.RiskAversion * sigma * sigma / m.cfg.Eta)
	}

	steps := make([]float64, trajectorySteps+1)
	if kappa == 0 {
		for i := range steps {
			steps[i] = quantityTotal * float64(i) / trajectorySteps
		}
	} else {
		denom := math.Sinh(kappa * t)
		for i := range steps {
			steps[i] = quantityTotal * math.Sinh(kappa*float64(i)*dt) / denom
		}
	}

	cost := m.cfg.Eta*quantityTotal*quantityTotal/t +
		m.cfg.Gamma*quantityTotal*quantityTotal/2 +
		m.cfg.RiskAversion*sigma*sigma*quantityTotal*quantityTotal*t/3

	return domain.Trajectory{Steps: steps, ExpectedCost: cost}
}
