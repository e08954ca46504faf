// models/market.go
package models

// Tick is one mock feed update broadcast over the websocket hub. Quote,
// candle and news responses from the upstream provider are passed through to
// clients as raw JSON and never decoded server-side.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}
