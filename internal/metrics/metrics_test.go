package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersWithGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TradeExecuted("BUY")
	m.TradeExecuted("BUY")
	m.TradeRejected("insufficient_funds")
	m.CacheResult(true)
	m.CacheResult(false)
	m.AchievementUnlocked("first_lesson", 50)
	m.Notified("webhook", errors.New("down"))

	assert.Equal(t, 2.0, gathered(t, reg, "investor_trades_executed_total", "side", "BUY"))
	assert.Equal(t, 1.0, gathered(t, reg, "investor_trades_rejected_total", "reason", "insufficient_funds"))
	assert.Equal(t, 1.0, gathered(t, reg, "investor_market_cache_hits_total", "", ""))
	assert.Equal(t, 1.0, gathered(t, reg, "investor_market_cache_misses_total", "", ""))
	assert.Equal(t, 50.0, gathered(t, reg, "investor_points_awarded_total", "", ""))
	assert.Equal(t, 1.0, gathered(t, reg, "investor_notifications_total", "result", "error"))

	// A second registry accepts a second set without panicking.
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}

// gathered returns the counter value of the first sample of family name
// carrying label=value (any sample when label is empty).
func gathered(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s=%q} not found", name, label, value)
	return 0
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TradeExecuted("BUY")
		m.CacheResult(true)
		m.Summarized("extractive")
		m.StoreFailed("save")
	})
}

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *HealthStatus)
		status string
		code   int
	}{
		{"memory only", func(h *HealthStatus) {}, "healthy", http.StatusOK},
		{"sqlite ok", func(h *HealthStatus) { h.EnableSQLite() }, "healthy", http.StatusOK},
		{"primary sqlite down", func(h *HealthStatus) {
			h.EnableSQLite()
			h.SQLiteOK = false
		}, "unhealthy", http.StatusServiceUnavailable},
		{"secondary redis down", func(h *HealthStatus) {
			h.EnableSQLite()
			h.EnableRedis()
			h.RedisConnected = false
		}, "degraded", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := "sqlite"
			if tc.name == "memory only" {
				backend = "memory"
			}
			h := NewHealthStatus(backend)
			tc.setup(h)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tc.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body["status"])
			assert.Equal(t, backend, body["storeBackend"])
		})
	}
}
