// Package api exposes the learning platform over HTTP. Every route speaks
// JSON; the X-Profile-ID header selects which learner's portfolio and
// progress a request reads or changes.
package api

import (
	"net/http"
	"time"

	"investor-edu/internal/indicator"
	"investor-edu/internal/marketdata"
	"investor-edu/internal/metrics"
	"investor-edu/internal/session"
	"investor-edu/internal/summarize"
)

// ProfileHeader names the header that selects a learner profile.
const ProfileHeader = "X-Profile-ID"

const maxBodyBytes = 1 << 20

// Deps are the services behind the routes. WS may be nil to disable the
// websocket stream.
type Deps struct {
	Sessions   *session.Manager
	Market     *marketdata.Service
	Summarizer *summarize.Summarizer
	WS         http.Handler
	Metrics    *metrics.Metrics
	Indicators indicator.Config
}

type server struct {
	Deps
	now func() time.Time
}

// NewRouter returns the API handler.
func NewRouter(d Deps) http.Handler {
	d.Indicators = d.Indicators.WithDefaults()
	s := &server{Deps: d, now: time.Now}
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, h))
	}

	handle("GET /api/v1/health", s.health)

	handle("POST /api/v1/indicators", s.indicators)
	handle("POST /api/v1/risk", s.risk)
	handle("GET /api/v1/analysis", s.analysis)

	handle("GET /api/v1/market", s.market)
	handle("GET /api/v1/market/overview", s.overview)
	handle("GET /api/v1/market/search", s.search)
	handle("GET /api/v1/market/stocks", s.stocks)
	handle("GET /api/v1/market/stocks/{symbol}", s.stock)

	handle("GET /api/v1/portfolio", s.portfolio)
	handle("POST /api/v1/portfolio/trades", s.trade)
	handle("POST /api/v1/portfolio/prices", s.prices)
	handle("POST /api/v1/portfolio/reset", s.resetPortfolio)
	handle("GET /api/v1/portfolio/journal", s.journal)
	handle("POST /api/v1/simulate", s.simulate)

	handle("GET /api/v1/progress", s.progress)
	handle("POST /api/v1/progress/lesson", s.lesson)
	handle("POST /api/v1/progress/quiz", s.quiz)
	handle("POST /api/v1/progress/translation", s.translation)
	handle("POST /api/v1/progress/login", s.login)
	handle("POST /api/v1/progress/reset", s.resetProgress)
	handle("GET /api/v1/achievements", s.achievements)

	handle("POST /api/v1/summarize", s.summarize)

	if d.WS != nil {
		mux.Handle("GET /ws", d.WS)
	}

	return withTrace(withCORS(mux))
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"upstream": s.Market.Upstream(),
		"time":     s.now().UTC().Format(time.RFC3339),
	})
}
