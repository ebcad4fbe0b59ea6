package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "HTTP_ADDR", "METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"STORE_BACKEND", "SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"INITIAL_CASH", "ALPHAVANTAGE_API_KEY", "ALPHAVANTAGE_BASE_URL",
		"MARKET_CACHE_TTL", "GEMINI_API_KEY", "GEMINI_MODEL", "ALERT_WEBHOOK_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "data/investor-edu.db", cfg.SQLitePath)
	assert.Equal(t, 1_000_000.0, cfg.InitialCash)
	assert.Equal(t, 90*time.Second, cfg.MarketCacheTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 20, cfg.Indicators.SMAPeriod)
	assert.Equal(t, 26, cfg.Indicators.MACDSlow)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7000"
store_backend: Redis
initial_cash: 500000
market_cache_ttl: 2m
indicators:
  sma_period: 50
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7100")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.HTTPAddr)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 500000.0, cfg.InitialCash)
	assert.Equal(t, 2*time.Minute, cfg.MarketCacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 50, cfg.Indicators.SMAPeriod)
	assert.Equal(t, 12, cfg.Indicators.EMAPeriod)
}

func TestLoad_BadValues(t *testing.T) {
	for key, val := range map[string]string{
		"REDIS_DB":         "zero",
		"INITIAL_CASH":     "lots",
		"MARKET_CACHE_TTL": "90",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}

	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.InitialCash = -1
	cfg.StoreBackend = "postgres"
	err = cfg.Validate()
	assert.ErrorContains(t, err, "INITIAL_CASH")
	assert.ErrorContains(t, err, "postgres")
}
