package model

import "encoding/json"

// Candle is one daily OHLC bar for a single symbol.
// Prices are in rupees; the wire keys match the market endpoint payload.
type Candle struct {
	Date   string  `json:"t"` // YYYY-MM-DD
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v,omitempty"`
}

// JSON returns the JSON-encoded candle (ignoring errors).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Closes extracts the closing prices of candles in order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
