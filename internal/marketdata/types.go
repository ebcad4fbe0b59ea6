// Package marketdata serves daily price series, index and mover snapshots
// and the built-in NSE practice catalog. Upstream data comes from Alpha
// Vantage when an API key is configured; every read path falls back to
// simulated data so callers always get a usable series.
package marketdata

import (
	"time"

	"investor-edu/internal/markethours"
	"investor-edu/internal/model"
)

// Series sources.
const (
	SourceAlphaVantage = "alphavantage"
	SourceOfflineSim   = "offline-sim"
)

// SeriesResponse is the payload of the daily-series endpoint.
type SeriesResponse struct {
	Source string         `json:"source"`
	Note   string         `json:"note,omitempty"`
	Symbol string         `json:"symbol"`
	Series []model.Candle `json:"series"`
}

// Quote is a point-in-time snapshot of a single stock.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Index is a point-in-time snapshot of a market index.
type Index struct {
	Name          string    `json:"name"`
	Value         float64   `json:"value"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Movers lists the day's top gainers and losers.
type Movers struct {
	Gainers []Quote `json:"gainers"`
	Losers  []Quote `json:"losers"`
}

// Overview is the market dashboard payload.
type Overview struct {
	Indices []Index            `json:"indices"`
	Movers  Movers             `json:"movers"`
	Trivia  string             `json:"trivia"`
	Status  markethours.Status `json:"status"`
}

// Stock is one entry of the practice catalog with its generated history.
type Stock struct {
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	Sector        string         `json:"sector"`
	MarketCap     string         `json:"marketCap"`
	Data          []model.Candle `json:"data"`
	CurrentPrice  float64        `json:"currentPrice"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"changePercent"`
}
