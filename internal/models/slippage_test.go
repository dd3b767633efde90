package models

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// risingWindow fills a store with count snapshots whose mid price increases
// by one on every step.
func risingWindow(t *testing.T, count int) *window.Store {
	t.Helper()
	store := window.New(count, 252)
	for i := 0; i < count; i++ {
		require.NoError(t, store.Insert(bookAt(t, 100+float64(i))))
	}
	return store
}

func TestSlippageColdStart(t *testing.T) {
	store := window.New(100, 252)
	m := NewSlippageModel(SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())

	assert.Equal(t, 0.0, m.Predict(1))
	assert.Equal(t, 0.0, m.Predict(1000))
	assert.True(t, m.LastFitTime().IsZero())
}

func TestSlippageFitSkipsBelowMinimumHistory(t *testing.T) {
	store := risingWindow(t, 5)
	m := NewSlippageModel(SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())

	now := time.Now()
	require.NoError(t, m.Fit(store.CurrentView(), now))

	// The fit step ran (so gating advances) but produced no parameters.
	assert.Equal(t, now.UnixNano(), m.LastFitTime().UnixNano())
	assert.Equal(t, 0.0, m.Predict(10))
}

func TestSlippageFitOnRisingMarket(t *testing.T) {
	store := risingWindow(t, 15)
	m := NewSlippageModel(SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())

	require.NoError(t, m.Fit(store.CurrentView(), time.Now()))

	// Every transition had a positive mid change, so the fitted median
	// relative move is positive and the estimate is a positive percentage.
	got := m.Predict(10)
	assert.Greater(t, got, 0.0)
}

func TestSlippageSizeFactorScalesSmallOrders(t *testing.T) {
	store := risingWindow(t, 15)
	m := NewSlippageModel(SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())
	require.NoError(t, m.Fit(store.CurrentView(), time.Now()))

	// Displayed volume is 20, so orders below 2 scale linearly and orders
	// at or above 2 saturate.
	small := m.Predict(1)
	saturated := m.Predict(2)
	large := m.Predict(100)

	assert.Greater(t, small, 0.0)
	assert.InDelta(t, saturated, large, 1e-12)
	assert.InDelta(t, saturated/2, small, 1e-12)
}

func TestSlippageKeepsPreviousFitOnDegenerateData(t *testing.T) {
	store := risingWindow(t, 15)
	m := NewSlippageModel(SlippageConfig{Quantile: 0.5, Alpha: 0.1, RefitInterval: time.Minute}, store, testLogger())
	require.NoError(t, m.Fit(store.CurrentView(), time.Now()))
	before := m.Predict(10)
	require.Greater(t, before, 0.0)

	// A degenerate view (enough snapshots, no usable transitions) fails the
	// fit but leaves the previous parameters serving predictions.
	snaps := make([]*domain.OrderBookSnapshot, minFitHistory)
	for i := range snaps {
		snaps[i] = &domain.OrderBookSnapshot{}
	}
	err := m.Fit(&window.View{Snapshots: snaps}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	assert.Equal(t, before, m.Predict(10))
}
