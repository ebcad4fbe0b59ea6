package model

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalises a side string ("buy", "SELL", ...).
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Order is a request to trade against the simulated portfolio.
type Order struct {
	Symbol   string  `json:"symbol"`
	Side     Side    `json:"side"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"` // rupees per share
}

// Trade is an executed order. Trades are immutable once recorded.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"` // quantity × price, before brokerage
}
