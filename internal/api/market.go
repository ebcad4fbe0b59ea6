package api

import (
	"errors"
	"net/http"

	"investor-edu/internal/marketdata"
)

func (s *server) market(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Market.Daily(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.Market.Overview(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	q, err := s.Market.Search(r.Context(), r.URL.Query().Get("symbol"))
	if errors.Is(err, marketdata.ErrSymbolRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) stocks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Market.Catalog().Stocks())
}

func (s *server) stock(w http.ResponseWriter, r *http.Request) {
	st, ok := s.Market.Stock(r.PathValue("symbol"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
