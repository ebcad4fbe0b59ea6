// Package config loads server and CLI settings from an optional YAML file,
// an optional .env file and environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"investor-edu/internal/indicator"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Servers
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug | info | warn | error
	LogFormat string `yaml:"log_format"` // json | text

	// Storage
	StoreBackend  string `yaml:"store_backend"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Sandbox
	InitialCash float64 `yaml:"initial_cash"`

	// Market data
	AlphaVantageKey     string        `yaml:"alphavantage_api_key"`
	AlphaVantageBaseURL string        `yaml:"alphavantage_base_url"`
	MarketCacheTTL      time.Duration `yaml:"market_cache_ttl"`

	// Summaries
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	// Notifications
	AlertWebhookURL string `yaml:"alert_webhook_url"`

	// Indicator periods used by the analysis endpoints.
	Indicators indicator.Config `yaml:"indicators"`
}

// Load reads CONFIG_FILE (if set), then .env (if present), then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.InitialCash <= 0 {
		errs = append(errs, fmt.Errorf("INITIAL_CASH must be positive, got %v", c.InitialCash))
	}
	switch c.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.MarketCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("MARKET_CACHE_TTL must be positive, got %v", c.MarketCacheTTL))
	}
	if err := c.Indicators.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("indicators: %w", err))
	}
	return errors.Join(errs...)
}

func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"HTTP_ADDR":             &cfg.HTTPAddr,
		"METRICS_ADDR":          &cfg.MetricsAddr,
		"LOG_LEVEL":             &cfg.LogLevel,
		"LOG_FORMAT":            &cfg.LogFormat,
		"STORE_BACKEND":         &cfg.StoreBackend,
		"SQLITE_PATH":           &cfg.SQLitePath,
		"REDIS_ADDR":            &cfg.RedisAddr,
		"REDIS_PASSWORD":        &cfg.RedisPassword,
		"ALPHAVANTAGE_API_KEY":  &cfg.AlphaVantageKey,
		"ALPHAVANTAGE_BASE_URL": &cfg.AlphaVantageBaseURL,
		"GEMINI_API_KEY":        &cfg.GeminiAPIKey,
		"GEMINI_MODEL":          &cfg.GeminiModel,
		"ALERT_WEBHOOK_URL":     &cfg.AlertWebhookURL,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("INITIAL_CASH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: INITIAL_CASH: %w", err)
		}
		cfg.InitialCash = f
	}
	if v := os.Getenv("MARKET_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: MARKET_CACHE_TTL: %w", err)
		}
		cfg.MarketCacheTTL = d
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	return nil
}

func setDefaults(cfg *Config) {
	setDefault(&cfg.HTTPAddr, ":8080")
	setDefault(&cfg.MetricsAddr, ":9090")
	setDefault(&cfg.LogLevel, "info")
	setDefault(&cfg.LogFormat, "json")
	setDefault(&cfg.StoreBackend, BackendSQLite)
	setDefault(&cfg.SQLitePath, "data/investor-edu.db")
	setDefault(&cfg.RedisAddr, "localhost:6379")
	setDefault(&cfg.GeminiModel, "gemini-2.0-flash")
	if cfg.InitialCash == 0 {
		cfg.InitialCash = 1_000_000
	}
	if cfg.MarketCacheTTL == 0 {
		cfg.MarketCacheTTL = 90 * time.Second
	}
	cfg.Indicators = cfg.Indicators.WithDefaults()
}

func setDefault(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
