package api

import (
	"net/http"
	"strings"

	"investor-edu/internal/gamification"
	"investor-edu/internal/model"
	"investor-edu/internal/portfolio"
)

type portfolioResponse struct {
	Portfolio model.Portfolio   `json:"portfolio"`
	Summary   portfolio.Summary `json:"summary"`
}

func withSummary(p model.Portfolio) portfolioResponse {
	return portfolioResponse{Portfolio: p, Summary: portfolio.Summarize(p)}
}

func (s *server) portfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	p, err := s.Sessions.Portfolio(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withSummary(p))
}

type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

type tradeResponse struct {
	Success   bool                       `json:"success"`
	Trade     model.Trade                `json:"trade"`
	Portfolio model.Portfolio            `json:"portfolio"`
	Unlocked  []gamification.Achievement `json:"unlocked,omitempty"`
}

// trade executes an order. Without a price, catalog tickers trade at their
// current practice price.
func (s *server) trade(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	var req tradeRequest
	if !decode(w, r, &req) {
		return
	}
	side, err := model.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	order := model.Order{
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:     side,
		Quantity: req.Quantity,
		Price:    req.Price,
	}
	if order.Price == 0 {
		if st, ok := s.Market.Stock(order.Symbol); ok {
			order.Price = st.CurrentPrice
		}
	}

	out, err := s.Sessions.Trade(r.Context(), id, order)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{
		Success:   true,
		Trade:     out.Trade,
		Portfolio: out.Portfolio,
		Unlocked:  out.Unlocked,
	})
}

type pricesRequest struct {
	Prices map[string]float64 `json:"prices"`
}

// prices revalues holdings. An empty request uses the catalog's current
// practice prices.
func (s *server) prices(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	var req pricesRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Prices) == 0 {
		req.Prices = make(map[string]float64)
		for _, st := range s.Market.Catalog().Stocks() {
			req.Prices[st.Symbol] = st.CurrentPrice
		}
	}
	p, err := s.Sessions.UpdatePrices(r.Context(), id, req.Prices)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withSummary(p))
}

func (s *server) resetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	p, err := s.Sessions.ResetPortfolio(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withSummary(p))
}

func (s *server) journal(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	limit, err := intQuery(r, "limit", 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := s.Sessions.Journal(r.Context(), id, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	if trades == nil {
		trades = []model.Trade{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

type simulateRequest struct {
	InitialCash float64              `json:"initialCash"`
	Trades      []portfolio.SimTrade `json:"trades"`
	Series      []model.Candle       `json:"series"`
	Symbol      string               `json:"symbol"`
}

// simulate replays a trade list. Without a series the symbol's daily series
// is used for valuation.
func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.InitialCash <= 0 {
		req.InitialCash = s.Sessions.InitialCash()
	}
	if len(req.Series) == 0 {
		series, err := s.Market.Daily(r.Context(), req.Symbol)
		if err != nil {
			fail(w, r, err)
			return
		}
		req.Series = series.Series
	}
	writeJSON(w, http.StatusOK, portfolio.Simulate(req.InitialCash, req.Trades, req.Series))
}
