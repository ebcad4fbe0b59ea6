package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investor-edu/internal/marketdata"
	"investor-edu/internal/session"
	"investor-edu/internal/store/memory"
	"investor-edu/internal/summarize"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *session.Manager) {
	t.Helper()
	store := memory.NewStore()
	mgr := session.New(session.Config{
		Store:   store,
		Journal: store,
		Now:     func() time.Time { return testNow },
	})
	t.Cleanup(mgr.Close)
	mkt := marketdata.NewService(
		marketdata.WithRand(rand.New(rand.NewSource(7)).Float64),
		marketdata.WithClock(func() time.Time { return testNow }),
	)
	h := NewRouter(Deps{Sessions: mgr, Market: mkt, Summarizer: summarize.New(nil, nil)})
	return h, mgr
}

func do(t *testing.T, h http.Handler, method, path, profile string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if profile != "" {
		req.Header.Set(ProfileHeader, profile)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndTrace(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, marketdata.SourceOfflineSim, body["upstream"])
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))

	rec = do(t, h, http.MethodOptions, "/api/v1/portfolio", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIndicators(t *testing.T) {
	h, _ := newTestRouter(t)
	series := make([]float64, 30)
	for i := range series {
		series[i] = float64(i + 1)
	}

	rec := do(t, h, http.MethodPost, "/api/v1/indicators", "", map[string]any{
		"series": series,
		"config": map[string]int{"smaPeriod": 5},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string][]*float64](t, rec)
	sma := body["sma"]
	require.Len(t, sma, 30)
	assert.Nil(t, sma[3])
	require.NotNil(t, sma[4])
	assert.InDelta(t, 3.0, *sma[4], 1e-9)
	assert.Len(t, body["rsi"], 30)

	rec = do(t, h, http.MethodPost, "/api/v1/indicators", "", map[string]any{
		"series": series,
		"config": map[string]int{"macdFast": 30, "macdSlow": 26},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/indicators", "", map[string]any{
		"series": []float64{1},
		"config": map[string]int64{"smaPeriod": 8589934592},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/indicators", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeBody[map[string]any](t, rec)["success"])

	rec = do(t, h, http.MethodPost, "/api/v1/risk", "", map[string]any{"series": []float64{100, 120, 90}})
	require.Equal(t, http.StatusOK, rec.Code)
	risk := decodeBody[map[string]float64](t, rec)
	assert.InDelta(t, 0.25, risk["maxDrawdown"], 1e-9)
}

func TestMarketRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/market?symbol=tcs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	series := decodeBody[marketdata.SeriesResponse](t, rec)
	assert.Equal(t, marketdata.SourceOfflineSim, series.Source)
	assert.Equal(t, "TCS", series.Symbol)
	assert.Len(t, series.Series, 60)
	assert.NotEmpty(t, series.Note)

	rec = do(t, h, http.MethodGet, "/api/v1/analysis?symbol=INFY", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decodeBody[map[string]json.RawMessage](t, rec)
	assert.Contains(t, analysis, "analysis")
	assert.Contains(t, analysis, "series")

	rec = do(t, h, http.MethodGet, "/api/v1/market/overview", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ov := decodeBody[marketdata.Overview](t, rec)
	assert.NotEmpty(t, ov.Indices)
	assert.Equal(t, marketdata.TriviaOfDay(testNow), ov.Trivia)

	rec = do(t, h, http.MethodGet, "/api/v1/market/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/market/search?symbol=wipro", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/market/stocks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]marketdata.Stock](t, rec), 10)

	rec = do(t, h, http.MethodGet, "/api/v1/market/stocks/itc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ITC", decodeBody[marketdata.Stock](t, rec).Symbol)

	rec = do(t, h, http.MethodGet, "/api/v1/market/stocks/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/trades", "alice", map[string]any{
		"symbol": "reliance", "side": "buy", "quantity": 10, "price": 100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tr := decodeBody[tradeResponse](t, rec)
	assert.True(t, tr.Success)
	assert.Equal(t, "RELIANCE", tr.Trade.Symbol)
	assert.InDelta(t, 998999.0, tr.Portfolio.Cash, 1e-9)
	require.NotEmpty(t, tr.Unlocked)
	assert.Equal(t, "first_trade", tr.Unlocked[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/portfolio", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pr := decodeBody[portfolioResponse](t, rec)
	assert.Len(t, pr.Portfolio.Positions, 1)
	assert.Equal(t, 1, pr.Summary.TotalTrades)

	rec = do(t, h, http.MethodGet, "/api/v1/portfolio", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[portfolioResponse](t, rec).Portfolio.Positions, "default profile is separate")

	rec = do(t, h, http.MethodPost, "/api/v1/portfolio/trades", "alice", map[string]any{
		"symbol": "TCS", "side": "sell", "quantity": 5, "price": 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	eb := decodeBody[errorBody](t, rec)
	assert.False(t, eb.Success)
	assert.Contains(t, eb.Error, "insufficient shares")

	rec = do(t, h, http.MethodPost, "/api/v1/portfolio/trades", "alice", map[string]any{
		"symbol": "TCS", "side": "hold", "quantity": 5, "price": 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/portfolio/trades", "alice", map[string]any{
		"symbol": "ITC", "side": "BUY", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, "catalog price fills a missing price")
	assert.Greater(t, decodeBody[tradeResponse](t, rec).Trade.Price, 0.0)

	rec = do(t, h, http.MethodPost, "/api/v1/portfolio/prices", "alice", map[string]any{
		"prices": map[string]float64{"RELIANCE": 120},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	revalued := decodeBody[portfolioResponse](t, rec).Portfolio
	pos, ok := revalued.Position("RELIANCE")
	require.True(t, ok)
	assert.Equal(t, 120.0, pos.CurrentPrice)

	rec = do(t, h, http.MethodGet, "/api/v1/portfolio/journal?limit=1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	journal := decodeBody[map[string][]map[string]any](t, rec)
	require.Len(t, journal["trades"], 1)
	assert.Equal(t, "ITC", journal["trades"][0]["symbol"])

	rec = do(t, h, http.MethodGet, "/api/v1/portfolio/journal?limit=x", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/portfolio/reset", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[portfolioResponse](t, rec).Portfolio.Positions)

	rec = do(t, h, http.MethodGet, "/api/v1/portfolio", "a b", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulate(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/v1/simulate", "", map[string]any{
		"initialCash": 10000,
		"trades": []map[string]any{
			{"side": "BUY", "qty": 10, "price": 100},
			{"side": "SELL", "qty": 4, "price": 110},
		},
		"series": []map[string]any{
			{"t": "2026-01-01", "o": 100, "h": 100, "l": 100, "c": 100},
			{"t": "2026-01-02", "o": 120, "h": 120, "l": 120, "c": 120},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[map[string]float64](t, rec)
	assert.InDelta(t, 9440.0, res["cash"], 1e-9)
	assert.InDelta(t, 6.0, res["positionQty"], 1e-9)
	assert.InDelta(t, 10160.0, res["value"], 1e-9)

	rec = do(t, h, http.MethodPost, "/api/v1/simulate", "", map[string]any{"symbol": "TCS"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, float64(1_000_000), decodeBody[map[string]float64](t, rec)["cash"], 1e-9)
}

func TestProgressRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/progress/quiz", "erin", map[string]any{"quizId": "q1", "score": 150})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/progress/quiz", "erin", map[string]any{"quizId": "q1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/progress/quiz", "erin", map[string]any{"quizId": "q1", "score": 95})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[session.ProgressOutcome](t, rec)
	assert.Equal(t, 95, out.State.Progress.QuizScores["q1"])
	var ids []string
	for _, a := range out.Unlocked {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "quiz_ace")

	rec = do(t, h, http.MethodPost, "/api/v1/progress/lesson", "erin", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/progress/lesson", "erin", map[string]any{"lessonId": "basics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"basics"}, decodeBody[session.ProgressOutcome](t, rec).State.Progress.CompletedLessons)

	rec = do(t, h, http.MethodPost, "/api/v1/progress/login", "erin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody[map[string]any](t, rec)["recorded"])

	rec = do(t, h, http.MethodPost, "/api/v1/progress/translation", "erin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/achievements", "erin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[map[string][]session.AchievementStatus](t, rec)["achievements"]
	assert.Len(t, list, 11)

	rec = do(t, h, http.MethodPost, "/api/v1/progress/reset", "erin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/progress", "erin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[map[string]map[string]any](t, rec)
	assert.Equal(t, float64(0), st["stats"]["totalPoints"])
}

func TestSummarize(t *testing.T) {
	h, mgr := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/summarize", "fay", map[string]any{"targetLang": "en"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/summarize", "fay", map[string]any{
		"text":       "SEBI has issued a circular on mutual fund risk disclosure. Investors must review the riskometer before investing.",
		"targetLang": "hi",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[summarizeResponse](t, rec)
	assert.Equal(t, summarize.BackendOffline, res.Backend)
	assert.NotEmpty(t, res.Summary)

	st, err := mgr.Progress(t.Context(), "fay")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Stats.DocumentsTranslated)
}
