// Package metrics exposes Prometheus counters for trading, market data,
// summaries and gamification, plus the /healthz liveness document.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	// Ledger
	TradesExecuted *prometheus.CounterVec // labels: side
	TradesRejected *prometheus.CounterVec // labels: reason
	PriceUpdates   prometheus.Counter

	// Indicators
	IndicatorComputeDur prometheus.Histogram
	IndicatorSeriesLen  prometheus.Histogram

	// Market data
	MarketFetches     *prometheus.CounterVec // labels: source
	MarketCacheHits   prometheus.Counter
	MarketCacheMisses prometheus.Counter
	UpstreamRetries   prometheus.Counter

	// Summaries
	Summaries *prometheus.CounterVec // labels: backend

	// Gamification
	AchievementsUnlocked *prometheus.CounterVec // labels: id
	PointsAwarded        prometheus.Counter

	// Delivery
	WSClients         prometheus.Gauge
	FanoutDropsTotal  *prometheus.CounterVec // labels: subscriber
	NotificationsSent *prometheus.CounterVec // labels: channel, result

	// Storage
	StoreErrors              *prometheus.CounterVec // labels: op
	StoreSaveDur             prometheus.Histogram
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter

	// HTTP
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // labels: route
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// registers with the process-wide default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		TradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_trades_executed_total",
			Help: "Simulated trades executed (by side)",
		}, []string{"side"}),
		TradesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_trades_rejected_total",
			Help: "Simulated trades rejected (by reason)",
		}, []string{"reason"}),
		PriceUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_price_updates_total",
			Help: "Market price updates applied to portfolios",
		}),

		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "investor_indicator_compute_duration_seconds",
			Help:    "Latency of a full indicator computation over one series",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		IndicatorSeriesLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "investor_indicator_series_length",
			Help:    "Number of prices per indicator request",
			Buckets: []float64{10, 30, 60, 120, 252, 500, 1000, 5000},
		}),

		MarketFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_market_fetches_total",
			Help: "Daily series served (by source: alphavantage, offline-sim)",
		}, []string{"source"}),
		MarketCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_market_cache_hits_total",
			Help: "Market data cache hits",
		}),
		MarketCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_market_cache_misses_total",
			Help: "Market data cache misses",
		}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_market_upstream_retries_total",
			Help: "Retried upstream market data requests",
		}),

		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_summaries_total",
			Help: "Documents summarised (by backend: ai, offline)",
		}, []string{"backend"}),

		AchievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_achievements_unlocked_total",
			Help: "Achievements unlocked (by id)",
		}, []string{"id"}),
		PointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_points_awarded_total",
			Help: "Gamification points awarded",
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "investor_ws_clients",
			Help: "Connected websocket clients",
		}),
		FanoutDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_fanout_drops_total",
			Help: "Portfolio events dropped by the bus per subscriber",
		}, []string{"subscriber"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_notifications_total",
			Help: "Achievement notifications (by channel and result)",
		}, []string{"channel", "result"}),

		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_store_errors_total",
			Help: "State store failures (by operation)",
		}, []string{"op"}),
		StoreSaveDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "investor_store_save_duration_seconds",
			Help:    "State blob save latency",
			Buckets: prometheus.DefBuckets,
		}),
		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "investor_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investor_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investor_http_requests_total",
			Help: "HTTP API requests (by route and status code)",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "investor_http_request_duration_seconds",
			Help:    "HTTP API latency (by route)",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.TradesExecuted,
		m.TradesRejected,
		m.PriceUpdates,
		m.IndicatorComputeDur,
		m.IndicatorSeriesLen,
		m.MarketFetches,
		m.MarketCacheHits,
		m.MarketCacheMisses,
		m.UpstreamRetries,
		m.Summaries,
		m.AchievementsUnlocked,
		m.PointsAwarded,
		m.WSClients,
		m.FanoutDropsTotal,
		m.NotificationsSent,
		m.StoreErrors,
		m.StoreSaveDur,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// The helpers below tolerate a nil *Metrics so library packages can be used
// without a registry (tests, CLI).

// ObserveIndicators records one indicator computation.
func (m *Metrics) ObserveIndicators(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorComputeDur.Observe(d.Seconds())
	m.IndicatorSeriesLen.Observe(float64(n))
}

// TradeExecuted counts an executed trade.
func (m *Metrics) TradeExecuted(side string) {
	if m == nil {
		return
	}
	m.TradesExecuted.WithLabelValues(side).Inc()
}

// TradeRejected counts a rejected trade.
func (m *Metrics) TradeRejected(reason string) {
	if m == nil {
		return
	}
	m.TradesRejected.WithLabelValues(reason).Inc()
}

// PricesUpdated counts a price update.
func (m *Metrics) PricesUpdated() {
	if m == nil {
		return
	}
	m.PriceUpdates.Inc()
}

// MarketFetched counts a served daily series.
func (m *Metrics) MarketFetched(source string) {
	if m == nil {
		return
	}
	m.MarketFetches.WithLabelValues(source).Inc()
}

// CacheResult counts a market cache lookup.
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.MarketCacheHits.Inc()
	} else {
		m.MarketCacheMisses.Inc()
	}
}

// UpstreamRetried counts a retried upstream call.
func (m *Metrics) UpstreamRetried() {
	if m == nil {
		return
	}
	m.UpstreamRetries.Inc()
}

// Summarized counts a summary by backend.
func (m *Metrics) Summarized(backend string) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(backend).Inc()
}

// AchievementUnlocked counts an unlocked achievement and its points.
func (m *Metrics) AchievementUnlocked(id string, points int) {
	if m == nil {
		return
	}
	m.AchievementsUnlocked.WithLabelValues(id).Inc()
	m.PointsAwarded.Add(float64(points))
}

// Notified counts a notification attempt.
func (m *Metrics) Notified(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsSent.WithLabelValues(channel, result).Inc()
}

// StoreFailed counts a storage failure.
func (m *Metrics) StoreFailed(op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(op).Inc()
}

// ObserveSave records state save latency.
func (m *Metrics) ObserveSave(d time.Duration) {
	if m == nil {
		return
	}
	m.StoreSaveDur.Observe(d.Seconds())
}

// ObserveHTTP records one API request.
func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
