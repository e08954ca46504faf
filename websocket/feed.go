// websocket/feed.go
package websocket

import (
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/voltvest/voltvest_backend/models"
)

// defaultFeedSymbols is the tick set streamed when FEED_SYMBOLS is unset.
var defaultFeedSymbols = map[string]float64{
	"TSLA": 242.50,
	"NIO":  5.12,
	"RIVN": 11.84,
	"LCID": 2.97,
}

// Feed broadcasts mock market ticks to every connected client. Prices follow
// a bounded random walk seeded from the configured base price; this is a
// demo feed, not real market data.
type Feed struct {
	hub      *Hub
	interval time.Duration
	prices   map[string]float64
	rng      *rand.Rand
	stop     chan struct{}
}

// NewFeed builds the mock feed. Symbols come from FEED_SYMBOLS
// (comma-separated); unknown symbols start at a nominal price.
func NewFeed(hub *Hub, interval time.Duration) *Feed {
	prices := make(map[string]float64)

	if env := os.Getenv("FEED_SYMBOLS"); env != "" {
		for _, sym := range strings.Split(env, ",") {
			sym = strings.ToUpper(strings.TrimSpace(sym))
			if sym == "" {
				continue
			}
			if base, ok := defaultFeedSymbols[sym]; ok {
				prices[sym] = base
			} else {
				prices[sym] = 100.0
			}
		}
	}
	if len(prices) == 0 {
		for sym, base := range defaultFeedSymbols {
			prices[sym] = base
		}
	}

	return &Feed{
		hub:      hub,
		interval: interval,
		prices:   prices,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:     make(chan struct{}),
	}
}

// Run ticks until Stop is called.
func (f *Feed) Run() {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if f.hub.ClientCount() == 0 {
				continue
			}
			for _, tick := range f.NextTicks() {
				f.hub.Broadcast(Notification{
					Type: MessageTypeTick,
					Data: tick,
				})
			}
		case <-f.stop:
			return
		}
	}
}

// Stop terminates the feed loop.
func (f *Feed) Stop() {
	close(f.stop)
}

// NextTicks advances every symbol one random-walk step, at most ±0.5% per
// tick, and never below one cent.
func (f *Feed) NextTicks() []models.Tick {
	now := time.Now().Unix()
	ticks := make([]models.Tick, 0, len(f.prices))

	for sym, price := range f.prices {
		drift := (f.rng.Float64() - 0.5) / 100.0
		next := price * (1 + drift)
		if next < 0.01 {
			next = 0.01
		}
		f.prices[sym] = next

		ticks = append(ticks, models.Tick{
			Symbol:    sym,
			Price:     next,
			Timestamp: now,
		})
	}
	return ticks
}
