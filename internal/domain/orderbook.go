package domain

import (
	"fmt"
	"time"
)

// PriceLevel is a single price+quantity entry in an orderbook.
type PriceLevel struct {
	Price float64
	Qty   float64
}

// OrderBookSnapshot is one point-in-time view of the L2 orderbook. Bids are
// ordered by descending price, asks by ascending price. Snapshots are
// immutable once built by NewOrderBookSnapshot; callers must not mutate the
// level slices.
type OrderBookSnapshot struct {
	Timestamp time.Time
	Bids      []PriceLevel
	Asks      []PriceLevel
	MidPrice  float64
}

// NewOrderBookSnapshot validates the raw levels and derives the mid price.
// It rejects empty sides, crossed books (best bid >= best ask), and negative
// quantities, so a stored snapshot always satisfies the book invariants.
func NewOrderBookSnapshot(ts time.Time, bids, asks []PriceLevel) (*OrderBookSnapshot, error) {
	if len(bids) == 0 || len(asks) == 0 {
		return nil, ErrEmptyBook
	}
	for _, lvl := range bids {
		if lvl.Qty < 0 {
			return nil, fmt.Errorf("bid level %v: %w", lvl.Price, ErrNegativeQuantity)
		}
	}
	for _, lvl := range asks {
		if lvl.Qty < 0 {
			return nil, fmt.Errorf("ask level %v: %w", lvl.Price, ErrNegativeQuantity)
		}
	}
	if bids[0].Price >= asks[0].Price {
		return nil, fmt.Errorf("bid %v >= ask %v: %w", bids[0].Price, asks[0].Price, ErrCrossedBook)
	}
	return &OrderBookSnapshot{
		Timestamp: ts.UTC(),
		Bids:      bids,
		Asks:      asks,
		MidPrice:  (bids[0].Price + asks[0].Price) / 2,
	}, nil
}

// BestBid returns the highest bid price.
func (s *OrderBookSnapshot) BestBid() float64 { return s.Bids[0].Price }

// BestAsk returns the lowest ask price.
func (s *OrderBookSnapshot) BestAsk() float64 { return s.Asks[0].Price }

// Spread returns the absolute bid-ask spread.
func (s *OrderBookSnapshot) Spread() float64 { return s.BestAsk() - s.BestBid() }

// RelativeSpread returns the spread divided by the mid price.
func (s *OrderBookSnapshot) RelativeSpread() float64 {
	if s.MidPrice == 0 {
		return 0
	}
	return s.Spread() / s.MidPrice
}

// BidVolume returns the total displayed quantity on the bid side.
func (s *OrderBookSnapshot) BidVolume() float64 {
	var sum float64
	for _, lvl := range s.Bids {
		sum += lvl.Qty
	}
	return sum
}

// AskVolume returns the total displayed quantity on the ask side.
func (s *OrderBookSnapshot) AskVolume() float64 {
	var sum float64
	for _, lvl := range s.Asks {
		sum += lvl.Qty
	}
	return sum
}

// DisplayedVolume returns the total visible quantity across both sides.
func (s *OrderBookSnapshot) DisplayedVolume() float64 {
	return s.BidVolume() + s.AskVolume()
}
