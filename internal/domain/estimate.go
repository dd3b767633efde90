package domain

import "time"

// ImpactBreakdown is the Almgren-Chriss impact decomposition for one order,
// each component expressed as a fraction of notional.
type ImpactBreakdown struct {
	Temporary float64 `json:"temporary"`
	Permanent float64 `json:"permanent"`
	Total     float64 `json:"total"`
}

// MakerTakerSplit is the predicted fill mix for an order, in percent.
// Maker + Taker always sums to 100.
type MakerTakerSplit struct {
	MakerPct float64 `json:"maker_pct"`
	TakerPct float64 `json:"taker_pct"`
}

// CostSummary aggregates every per-order estimate the simulator produces,
// the shape polled by the UI on its refresh tick.
type CostSummary struct {
	QuantityUSD float64         `json:"quantity_usd"`
	MidPrice    float64         `json:"mid_price"`
	ImpactPct   float64         `json:"impact_pct"`
	SlippagePct float64         `json:"slippage_pct"`
	Split       MakerTakerSplit `json:"maker_taker"`
	FeeTier     string          `json:"fee_tier"`
	FeesUSD     float64         `json:"fees_usd"`
	NetCostUSD  float64         `json:"net_cost_usd"`
	Volatility  float64         `json:"volatility"`
	WindowSize  int             `json:"window_size"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Trajectory is an optimal execution schedule: cumulative quantity to have
// executed at each of the equally spaced steps across the horizon.
type Trajectory struct {
	Steps        []float64 `json:"steps"`
	ExpectedCost float64   `json:"expected_cost"`
}
