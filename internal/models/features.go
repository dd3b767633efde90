// Package models implements the three trading-cost models: the closed-form
// Almgren-Chriss market impact model, the online quantile-regression
// slippage model, and the online logistic maker/taker classifier. The two
// online models share the rolling window as their training set and expose a
// fit step driven by the refit scheduler; prediction paths are read-only.
package models

import (
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// minFitHistory is the number of snapshots the window must hold before an
// online model fits; below it the models keep (or start with) their neutral
// state and predictions return the cold-start defaults.
const minFitHistory = 10

// slippageDataset builds one feature row and label per snapshot transition:
// features [displayedVolume, relativeSpread, volatility], label the signed
// relative mid-price change from the previous snapshot. The volatility
// column is the window estimate at build time, the same for every row.
func slippageDataset(v *window.View) (x [][]float64, y []float64) {
	snaps := v.Snapshots
	for i := 1; i < len(snaps); i++ {
		prev, curr := snaps[i-1], snaps[i]
		if prev.MidPrice == 0 {
			continue
		}
		x = append(x, []float64{curr.DisplayedVolume(), curr.RelativeSpread(), v.Volatility})
		y = append(y, (curr.MidPrice-prev.MidPrice)/prev.MidPrice)
	}
	return x, y
}

// makerTakerDataset builds one row per transition: features
// [relativeSpread, bidVolume/(bidVolume+askVolume), volatility], label 1
// when the mid price increased on that step, else 0.
func makerTakerDataset(v *window.View) (x [][]float64, y []float64) {
	snaps := v.Snapshots
	for i := 1; i < len(snaps); i++ {
		prev, curr := snaps[i-1], snaps[i]
		if prev.MidPrice == 0 {
			continue
		}
		label := 0.0
		if curr.MidPrice > prev.MidPrice {
			label = 1.0
		}
		x = append(x, []float64{curr.RelativeSpread(), volumeRatio(curr.BidVolume(), curr.AskVolume()), v.Volatility})
		y = append(y, label)
	}
	return x, y
}

// volumeRatio is the bid share of displayed volume, 0.5 on an empty book.
func volumeRatio(bidVol, askVol float64) float64 {
	total := bidVol + askVol
	if total <= 0 {
		return 0.5
	}
	return bidVol / total
}
