package websocket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeedDefaultSymbols(t *testing.T) {
	t.Setenv("FEED_SYMBOLS", "")

	feed := NewFeed(NewHub(), 0)

	assert.Len(t, feed.prices, len(defaultFeedSymbols))
	for sym := range defaultFeedSymbols {
		assert.Contains(t, feed.prices, sym)
	}
}

func TestNewFeedConfiguredSymbols(t *testing.T) {
	t.Setenv("FEED_SYMBOLS", "tsla, XPEV ,")

	feed := NewFeed(NewHub(), 0)

	require.Len(t, feed.prices, 2)
	assert.Equal(t, defaultFeedSymbols["TSLA"], feed.prices["TSLA"])
	// Unknown symbols start at the nominal base price
	assert.Equal(t, 100.0, feed.prices["XPEV"])
}

func TestNextTicksBoundedWalk(t *testing.T) {
	t.Setenv("FEED_SYMBOLS", "")

	feed := NewFeed(NewHub(), 0)

	prev := make(map[string]float64, len(feed.prices))
	for sym, price := range feed.prices {
		prev[sym] = price
	}

	for step := 0; step < 500; step++ {
		ticks := feed.NextTicks()
		require.Len(t, ticks, len(prev))

		for _, tick := range ticks {
			before := prev[tick.Symbol]
			drift := math.Abs(tick.Price-before) / before

			assert.LessOrEqual(t, drift, 0.005+1e-9, "step %d, %s moved more than 0.5%%", step, tick.Symbol)
			assert.GreaterOrEqual(t, tick.Price, 0.01)
			assert.NotZero(t, tick.Timestamp)

			prev[tick.Symbol] = tick.Price
		}
	}
}
