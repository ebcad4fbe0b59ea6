package portfolio

import (
	"investor-edu/internal/indicator"
	"investor-edu/internal/model"
)

// SimTrade is one step of a what-if scenario against a single ticker.
type SimTrade struct {
	Side     model.Side `json:"side"`
	Quantity int64      `json:"qty"`
	Price    float64    `json:"price"`
	Symbol   string     `json:"ticker"`
	TS       int64      `json:"ts"`
}

// SimResult is the outcome of Simulate. Volatility and drawdown are
// percentages rounded to 2 decimals.
type SimResult struct {
	Cash                 float64 `json:"cash"`
	PositionQty          int64   `json:"positionQty"`
	AvgCost              float64 `json:"avgCost"`
	Value                float64 `json:"value"`
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
}

// Simulate replays trades against a fee-free single-position account and
// values the result at the last close of series.
//
// Unlike the Ledger, buys are not checked against cash and sells are clamped
// to the quantity held. The average cost resets to 0 when the position is
// closed.
func Simulate(initialCash float64, trades []SimTrade, series []model.Candle) SimResult {
	cash := initialCash
	var qty int64
	avg := 0.0

	for _, t := range trades {
		if t.Quantity <= 0 || !(t.Price > 0) {
			continue
		}
		switch t.Side {
		case model.SideBuy:
			cash -= float64(t.Quantity) * t.Price
			total := avg*float64(qty) + float64(t.Quantity)*t.Price
			qty += t.Quantity
			avg = total / float64(qty)
		case model.SideSell:
			sell := min(t.Quantity, qty)
			cash += float64(sell) * t.Price
			qty -= sell
			if qty == 0 {
				avg = 0
			}
		}
	}

	closes := model.Closes(series)
	last := 0.0
	if len(closes) > 0 {
		last = closes[len(closes)-1]
	}
	return SimResult{
		Cash:                 cash,
		PositionQty:          qty,
		AvgCost:              avg,
		Value:                cash + float64(qty)*last,
		AnnualizedVolatility: max(0, indicator.Percent(indicator.AnnualizedVolatility(closes))),
		MaxDrawdown:          indicator.Percent(indicator.MaxDrawdown(closes)),
	}
}
