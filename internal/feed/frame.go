package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
)

// wireFrame is the L2 orderbook frame as it arrives on the stream: prices
// and quantities are decimal strings, bids descending, asks ascending.
type wireFrame struct {
	Timestamp string     `json:"timestamp"`
	Bids      [][]string `json:"bids"`
	Asks      [][]string `json:"asks"`
}

// decodeFrame parses a raw stream message into a validated snapshot. Every
// failure wraps domain.ErrMalformedFrame so the receive loop can tell a bad
// frame from a connection-level error.
func decodeFrame(raw []byte) (*domain.OrderBookSnapshot, error) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, frame.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q: %v", domain.ErrMalformedFrame, frame.Timestamp, err)
	}

	bids, err := parseLevels(frame.Bids)
	if err != nil {
		return nil, fmt.Errorf("%w: bids: %v", domain.ErrMalformedFrame, err)
	}
	asks, err := parseLevels(frame.Asks)
	if err != nil {
		return nil, fmt.Errorf("%w: asks: %v", domain.ErrMalformedFrame, err)
	}

	snap, err := domain.NewOrderBookSnapshot(ts, bids, asks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	return snap, nil
}

// parseLevels converts [[price, qty], ...] string pairs into price levels.
func parseLevels(raw [][]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for i, entry := range raw {
		if len(entry) < 2 {
			return nil, fmt.Errorf("level %d: want [price, qty], got %d fields", i, len(entry))
		}
		price, err := strconv.ParseFloat(entry[0], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d: price %q: %v", i, entry[0], err)
		}
		qty, err := strconv.ParseFloat(entry[1], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d: qty %q: %v", i, entry[1], err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Qty: qty})
	}
	return levels, nil
}
