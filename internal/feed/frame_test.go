package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
)

func TestDecodeFrame(t *testing.T) {
	raw := []byte(`{
		"timestamp": "2025-05-04T10:39:13.123456Z",
		"bids": [["95445.5", "9.06"], ["95445.4", "1.02"]],
		"asks": [["95445.6", "1.25"], ["95445.7", "0.40"]]
	}`)

	snap, err := decodeFrame(raw)
	require.NoError(t, err)

	want := time.Date(2025, 5, 4, 10, 39, 13, 123456000, time.UTC)
	assert.Equal(t, want, snap.Timestamp)
	assert.Equal(t, 95445.5, snap.BestBid())
	assert.Equal(t, 95445.6, snap.BestAsk())
	assert.InDelta(t, 95445.55, snap.MidPrice, 1e-9)
	assert.InDelta(t, 10.08, snap.BidVolume(), 1e-9)
}

func TestDecodeFrameMalformed(t *testing.T) {
	cases := map[string][]byte{
		"invalid json":    []byte(`{not json`),
		"bad timestamp":   []byte(`{"timestamp": "yesterday", "bids": [["1", "1"]], "asks": [["2", "1"]]}`),
		"bad price":       []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["abc", "1"]], "asks": [["2", "1"]]}`),
		"bad qty":         []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["1", "x"]], "asks": [["2", "1"]]}`),
		"short level":     []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["1"]], "asks": [["2", "1"]]}`),
		"empty bids":      []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [], "asks": [["2", "1"]]}`),
		"crossed book":    []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["3", "1"]], "asks": [["2", "1"]]}`),
		"negative volume": []byte(`{"timestamp": "2025-05-04T10:39:13Z", "bids": [["1", "-5"]], "asks": [["2", "1"]]}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeFrame(raw)
			assert.ErrorIs(t, err, domain.ErrMalformedFrame)
		})
	}
}
