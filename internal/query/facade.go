// Package query is the pull-based read surface the external UI polls. Every
// operation converts a USD order size to base quantity at the current mid
// price, delegates to the models' prediction paths, and returns a
// well-defined number even during cold start. Nothing here mutates state,
// blocks on I/O, or triggers recomputation.
package query

import (
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/models"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// defaultHorizonDays is the execution horizon assumed for single-number
// impact estimates.
const defaultHorizonDays = 1.0

// Facade bundles read access to the three cost models.
type Facade struct {
	store      *window.Store
	impact     *models.ImpactModel
	slippage   *models.SlippageModel
	makerTaker *models.MakerTakerModel
	fees       domain.FeeSchedule
}

// New creates a Facade. A nil fee schedule falls back to the defaults.
func New(store *window.Store, impact *models.ImpactModel, slippage *models.SlippageModel, makerTaker *models.MakerTakerModel, fees domain.FeeSchedule) *Facade {
	if fees == nil {
		fees = domain.DefaultFeeSchedule()
	}
	return &Facade{
		store:      store,
		impact:     impact,
		slippage:   slippage,
		makerTaker: makerTaker,
		fees:       fees,
	}
}

// baseQuantity converts a USD order size at the current mid price; 0 while
// no price is known.
func (f *Facade) baseQuantity(quantityUSD float64) (base, mid float64) {
	mid = f.store.CurrentView().MidPrice()
	if mid == 0 {
		return 0, 0
	}
	return quantityUSD / mid, mid
}

// LatestImpact returns the expected total market impact for a USD order
// size, as a percentage of notional. 0 while no price is known.
func (f *Facade) LatestImpact(quantityUSD float64) float64 {
	base, mid := f.baseQuantity(quantityUSD)
	if mid == 0 {
		return 0
	}
	return f.impact.Impact(base, defaultHorizonDays).Total * 100
}

// LatestSlippage returns the expected slippage for a USD order size, as a
// percentage. 0 while no price is known or during model cold start.
func (f *Facade) LatestSlippage(quantityUSD float64) float64 {
	base, mid := f.baseQuantity(quantityUSD)
	if mid == 0 {
		return 0
	}
	return f.slippage.Predict(base)
}

// LatestMakerTakerSplit returns the predicted fill mix in percent. The two
// proportions always sum to 100; cold start yields 50/50.
func (f *Facade) LatestMakerTakerSplit() domain.MakerTakerSplit {
	return f.makerTaker.Predict()
}

// Trajectory returns the optimal execution schedule for a base-asset
// quantity over the given horizon in days.
func (f *Facade) Trajectory(quantityBase, horizonDays float64) domain.Trajectory {
	return f.impact.OptimalTrajectory(quantityBase, horizonDays)
}

// CostSummary aggregates every estimate for one order: impact, slippage,
// maker/taker mix, the fee bill under the given tier, and the resulting net
// cost in USD.
func (f *Facade) CostSummary(quantityUSD float64, feeTier string) domain.CostSummary {
	view := f.store.CurrentView()
	split := f.makerTaker.Predict()
	impactPct := f.LatestImpact(quantityUSD)
	slippagePct := f.LatestSlippage(quantityUSD)

	tier := f.fees.Lookup(feeTier)
	blendedFee := split.MakerPct/100*tier.Maker + split.TakerPct/100*tier.Taker
	feesUSD := quantityUSD * blendedFee
	netCost := quantityUSD*(impactPct+slippagePct)/100 + feesUSD

	return domain.CostSummary{
		QuantityUSD: quantityUSD,
		MidPrice:    view.MidPrice(),
		ImpactPct:   impactPct,
		SlippagePct: slippagePct,
		Split:       split,
		FeeTier:     feeTier,
		FeesUSD:     feesUSD,
		NetCostUSD:  netCost,
		Volatility:  view.Volatility,
		WindowSize:  len(view.Snapshots),
		GeneratedAt: time.Now().UTC(),
	}
}
