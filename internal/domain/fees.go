package domain

// FeeTier holds the maker and taker fee rates for one exchange fee tier,
// expressed as fractions (0.001 = 0.10 %).
type FeeTier struct {
	Maker float64
	Taker float64
}

// FeeSchedule maps tier names to their fee rates.
type FeeSchedule map[string]FeeTier

// DefaultFeeSchedule returns the OKX spot fee tiers used when the
// configuration does not override them.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		"Tier 1": {Maker: 0.0008, Taker: 0.0010},
		"Tier 2": {Maker: 0.0007, Taker: 0.0009},
		"Tier 3": {Maker: 0.0006, Taker: 0.0008},
		"Tier 4": {Maker: 0.0005, Taker: 0.0007},
	}
}

// Lookup returns the fee rates for the named tier. Unknown tiers fall back
// to "Tier 1", the most expensive tier, so a bad tier name can only
// overestimate costs.
func (fs FeeSchedule) Lookup(name string) FeeTier {
	if t, ok := fs[name]; ok {
		return t
	}
	return fs["Tier 1"]
}
