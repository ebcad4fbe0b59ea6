package portfolio

import (
	"sort"

	"investor-edu/internal/model"
)

// Summary is a compact P&L read-out of a portfolio snapshot.
type Summary struct {
	RealizedPnL   float64        `json:"realizedPnL"`
	UnrealizedPnL float64        `json:"unrealizedPnL"`
	TotalPnL      float64        `json:"totalPnL"`
	TotalTrades   int            `json:"totalTrades"`
	OpenPositions int            `json:"openPositions"`
	CashPercent   float64        `json:"cashPercent"`
	Allocation    []Allocation   `json:"allocation"`
	BySide        map[string]int `json:"bySide"`
}

// Allocation is one position's share of total portfolio value.
type Allocation struct {
	Symbol  string  `json:"symbol"`
	Percent float64 `json:"percent"`
}

// Summarize builds a Summary from p. Allocations are sorted largest first.
func Summarize(p model.Portfolio) Summary {
	s := Summary{
		RealizedPnL:   p.RealizedPnL,
		UnrealizedPnL: p.TotalPnL,
		TotalPnL:      p.RealizedPnL + p.TotalPnL,
		TotalTrades:   len(p.Trades),
		OpenPositions: len(p.Positions),
		Allocation:    make([]Allocation, 0, len(p.Positions)),
		BySide:        map[string]int{string(model.SideBuy): 0, string(model.SideSell): 0},
	}
	for _, t := range p.Trades {
		s.BySide[string(t.Side)]++
	}
	if p.TotalValue > 0 {
		s.CashPercent = p.Cash / p.TotalValue * 100
		for _, pos := range p.Positions {
			s.Allocation = append(s.Allocation, Allocation{
				Symbol:  pos.Symbol,
				Percent: pos.MarketValue / p.TotalValue * 100,
			})
		}
	}
	sort.SliceStable(s.Allocation, func(i, j int) bool {
		return s.Allocation[i].Percent > s.Allocation[j].Percent
	})
	return s
}
