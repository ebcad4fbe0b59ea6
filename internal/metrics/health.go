package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	StoreBackend   string `json:"storeBackend"`
	RedisEnabled   bool   `json:"redisEnabled"`
	RedisConnected bool   `json:"redisConnected"`
	SQLiteEnabled  bool   `json:"sqliteEnabled"`
	SQLiteOK       bool   `json:"sqliteOk"`
	MarketUpstream bool   `json:"marketUpstream"`
	AIBackend      string `json:"aiBackend"`

	// Liveness check results
	RedisLatencyMs  float64   `json:"redisLatencyMs"`
	SQLiteLatencyMs float64   `json:"sqliteLatencyMs"`
	LastCheckAt     time.Time `json:"lastCheckAt"`
	StartedAt       time.Time `json:"startedAt"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(storeBackend string) *HealthStatus {
	return &HealthStatus{
		StoreBackend: storeBackend,
		StartedAt:    time.Now(),
	}
}

// EnableRedis marks redis as a dependency whose check affects health.
func (h *HealthStatus) EnableRedis() {
	h.mu.Lock()
	h.RedisEnabled = true
	h.RedisConnected = true
	h.mu.Unlock()
}

// EnableSQLite marks sqlite as a dependency whose check affects health.
func (h *HealthStatus) EnableSQLite() {
	h.mu.Lock()
	h.SQLiteEnabled = true
	h.SQLiteOK = true
	h.mu.Unlock()
}

func (h *HealthStatus) SetMarketUpstream(v bool) {
	h.mu.Lock()
	h.MarketUpstream = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetAIBackend(name string) {
	h.mu.Lock()
	h.AIBackend = name
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx ends.
// Either client may be nil.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(checkCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(checkCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// Healthy reports the overall status string and HTTP code.
func (h *HealthStatus) Healthy() (string, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.statusLocked()
}

func (h *HealthStatus) statusLocked() (string, int) {
	redisDown := h.RedisEnabled && !h.RedisConnected
	sqliteDown := h.SQLiteEnabled && !h.SQLiteOK
	switch {
	case redisDown && sqliteDown:
		return "unhealthy", http.StatusServiceUnavailable
	case h.StoreBackend == "redis" && redisDown, h.StoreBackend == "sqlite" && sqliteDown:
		return "unhealthy", http.StatusServiceUnavailable
	case redisDown || sqliteDown:
		return "degraded", http.StatusOK
	}
	return "healthy", http.StatusOK
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus, httpCode := h.statusLocked()

	lastCheck := ""
	if !h.LastCheckAt.IsZero() {
		lastCheck = h.LastCheckAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		StoreBackend    string  `json:"storeBackend"`
		RedisEnabled    bool    `json:"redisEnabled"`
		RedisConnected  bool    `json:"redisConnected"`
		RedisLatencyMs  float64 `json:"redisLatencyMs"`
		SQLiteEnabled   bool    `json:"sqliteEnabled"`
		SQLiteOK        bool    `json:"sqliteOk"`
		SQLiteLatencyMs float64 `json:"sqliteLatencyMs"`
		MarketUpstream  bool    `json:"marketUpstream"`
		AIBackend       string  `json:"aiBackend"`
		LastCheckAt     string  `json:"lastCheckAt"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		StoreBackend:    h.StoreBackend,
		RedisEnabled:    h.RedisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteEnabled:   h.SQLiteEnabled,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		MarketUpstream:  h.MarketUpstream,
		AIBackend:       h.AIBackend,
		LastCheckAt:     lastCheck,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}
