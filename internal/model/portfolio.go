package model

import (
	"encoding/json"
	"time"
)

// Portfolio is a point-in-time view of the simulated account.
// Trades are ordered most-recent first.
type Portfolio struct {
	Cash            float64    `json:"cash"`
	TotalValue      float64    `json:"totalValue"`
	TotalInvested   float64    `json:"totalInvested"`
	TotalPnL        float64    `json:"totalPnL"`
	TotalPnLPercent float64    `json:"totalPnLPercent"`
	RealizedPnL     float64    `json:"realizedPnL"`
	Positions       []Position `json:"positions"`
	Trades          []Trade    `json:"trades"`
}

// Clone returns a deep copy so callers cannot reach back into ledger state.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Positions = make([]Position, len(p.Positions))
	copy(out.Positions, p.Positions)
	out.Trades = make([]Trade, len(p.Trades))
	copy(out.Trades, p.Trades)
	return out
}

// Position returns the position for symbol, if held.
func (p Portfolio) Position(symbol string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return Position{}, false
}

// PortfolioEvent is published after every mutation of a profile's portfolio.
type PortfolioEvent struct {
	Profile   string    `json:"profile"`
	Kind      string    `json:"kind"` // trade, prices, reset
	Portfolio Portfolio `json:"portfolio"`
	TS        time.Time `json:"ts"`
}

// JSON returns the JSON-encoded event (ignoring errors for fan-out usage).
func (e *PortfolioEvent) JSON() []byte {
	b, _ := json.Marshal(e)
	return b
}
