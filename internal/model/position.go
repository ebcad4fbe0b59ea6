package model

// Position is the holding of a single symbol in the simulated portfolio.
type Position struct {
	Symbol               string  `json:"symbol"`
	Quantity             int64   `json:"quantity"`
	AveragePrice         float64 `json:"averagePrice"` // volume-weighted cost basis per share
	CurrentPrice         float64 `json:"currentPrice"`
	MarketValue          float64 `json:"marketValue"`
	UnrealizedPnL        float64 `json:"unrealizedPnL"`
	UnrealizedPnLPercent float64 `json:"unrealizedPnLPercent"`
}

// CostBasis returns quantity × average price.
func (p *Position) CostBasis() float64 {
	return float64(p.Quantity) * p.AveragePrice
}

// Revalue sets the current price and recomputes the derived fields.
func (p *Position) Revalue(price float64) {
	p.CurrentPrice = price
	p.MarketValue = float64(p.Quantity) * price
	cost := p.CostBasis()
	p.UnrealizedPnL = p.MarketValue - cost
	if cost != 0 {
		p.UnrealizedPnLPercent = p.UnrealizedPnL / cost * 100
	} else {
		p.UnrealizedPnLPercent = 0
	}
}
