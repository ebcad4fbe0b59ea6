package api

import (
	"net/http"
	"time"

	"investor-edu/internal/indicator"
	"investor-edu/internal/marketdata"
	"investor-edu/internal/model"
	"investor-edu/internal/strategy"
)

type indicatorsRequest struct {
	Series []float64         `json:"series"`
	Config *indicator.Config `json:"config,omitempty"`
}

func (s *server) indicators(w http.ResponseWriter, r *http.Request) {
	var req indicatorsRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := s.Indicators
	if req.Config != nil {
		cfg = req.Config.WithDefaults()
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	res := indicator.Compute(req.Series, cfg)
	s.Metrics.ObserveIndicators(len(req.Series), time.Since(start))
	writeJSON(w, http.StatusOK, res)
}

func (s *server) risk(w http.ResponseWriter, r *http.Request) {
	var req indicatorsRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, indicator.ComputeRisk(req.Series))
}

type analysisResponse struct {
	marketdata.SeriesResponse
	Analysis strategy.Analysis `json:"analysis"`
}

func (s *server) analysis(w http.ResponseWriter, r *http.Request) {
	series, err := s.Market.Daily(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		fail(w, r, err)
		return
	}
	closes := model.Closes(series.Series)
	start := time.Now()
	a := strategy.Analyze(closes, s.Indicators)
	s.Metrics.ObserveIndicators(len(closes), time.Since(start))
	writeJSON(w, http.StatusOK, analysisResponse{SeriesResponse: series, Analysis: a})
}
