// Command server runs the investor-education API: market data, indicator
// analysis, the trading sandbox, learner progress, document summaries and the
// websocket portfolio stream.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"investor-edu/config"
	"investor-edu/internal/api"
	"investor-edu/internal/bus"
	"investor-edu/internal/gateway"
	"investor-edu/internal/logger"
	"investor-edu/internal/marketdata"
	"investor-edu/internal/metrics"
	"investor-edu/internal/model"
	"investor-edu/internal/notification"
	"investor-edu/internal/session"
	"investor-edu/internal/store/memory"
	redisstore "investor-edu/internal/store/redis"
	sqlitestore "investor-edu/internal/store/sqlite"
	"investor-edu/internal/summarize"
)

const (
	busBufferSize   = 1024
	livenessPeriod  = 10 * time.Second
	statusPeriod    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init("investor-edu", logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// backend is the wired storage layer.
type backend struct {
	state   model.StateStore
	journal model.TradeJournal
	cache   model.Cache
	redis   *redisstore.Store
	sqlite  *sqlitestore.Store
}

func openBackend(ctx context.Context, cfg *config.Config, prom *metrics.Metrics, health *metrics.HealthStatus) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		st, err := sqlitestore.Open(sqlitestore.Config{DBPath: cfg.SQLitePath})
		if err != nil {
			return nil, err
		}
		health.EnableSQLite()
		slog.Info("sqlite store ready", "component", "main", "path", cfg.SQLitePath)
		return &backend{state: st, journal: st, cache: memory.NewCache(), sqlite: st}, nil

	case config.BackendRedis:
		st, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		st.Breaker().OnStateChange = func(from, to redisstore.State) {
			prom.RedisCircuitBreakerState.Set(float64(to))
			if to == redisstore.StateOpen {
				prom.RedisCircuitBreakerTrips.Inc()
			}
			slog.Warn("redis circuit breaker state change", "component", "main", "from", from.String(), "to", to.String())
		}
		health.EnableRedis()
		slog.Info("redis store ready", "component", "main", "addr", cfg.RedisAddr)
		return &backend{state: st, cache: st, redis: st}, nil

	default:
		mem := memory.NewStore()
		slog.Warn("using in-memory store; state is lost on restart", "component", "main")
		return &backend{state: mem, journal: mem, cache: memory.NewCache()}, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	prom := metrics.NewMetrics(nil)
	health := metrics.NewHealthStatus(cfg.StoreBackend)

	be, err := openBackend(ctx, cfg, prom, health)
	if err != nil {
		return err
	}
	defer be.state.Close()

	health.StartLivenessChecker(ctx, be.redisClient(), be.sqliteDB(), livenessPeriod)

	// Market data
	marketOpts := []marketdata.Option{
		marketdata.WithCache(be.cache),
		marketdata.WithTTL(cfg.MarketCacheTTL),
		marketdata.WithMetrics(prom),
	}
	if cfg.AlphaVantageKey != "" {
		marketOpts = append(marketOpts, marketdata.WithClient(marketdata.NewClient(cfg.AlphaVantageBaseURL, cfg.AlphaVantageKey)))
	}
	market := marketdata.NewService(marketOpts...)
	health.SetMarketUpstream(cfg.AlphaVantageKey != "")

	// Summaries
	var gen summarize.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := summarize.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini unavailable, summaries use the offline backend", "component", "main", "error", err)
		} else {
			gen = g
		}
	}
	summarizer := summarize.New(gen, prom)
	if gen != nil {
		health.SetAIBackend(cfg.GeminiModel)
	} else {
		health.SetAIBackend(summarize.BackendOffline)
	}

	// Notifications
	notifiers := notification.Multi{notification.Instrumented{Notifier: notification.NewLogNotifier(), Channel: "log", Metrics: prom}}
	if cfg.AlertWebhookURL != "" {
		notifiers = append(notifiers, notification.Instrumented{
			Notifier: notification.NewWebhookNotifier(cfg.AlertWebhookURL),
			Channel:  "webhook",
			Metrics:  prom,
		})
	}

	// Portfolio events: sessions publish, the bus fans out to the websocket hub.
	// With redis, events round-trip through pub/sub so every instance sees them.
	busIn := make(chan model.PortfolioEvent, busBufferSize)
	fanout := bus.New(busBufferSize)
	fanout.OnDrop = func(i int) {
		prom.FanoutDropsTotal.WithLabelValues(strconv.Itoa(i)).Inc()
	}
	hub := gateway.NewHub(prom)
	hubIn := fanout.Subscribe()

	var publisher model.EventPublisher
	if be.redis != nil {
		publisher = be.redis
	} else {
		cp := bus.NewChanPublisher(busIn)
		cp.OnDrop = func() { prom.FanoutDropsTotal.WithLabelValues("input").Inc() }
		publisher = cp
	}

	sessions := session.New(session.Config{
		Store:       be.state,
		Journal:     be.journal,
		Publisher:   publisher,
		Notifier:    notifiers,
		Metrics:     prom,
		InitialCash: cfg.InitialCash,
	})
	defer sessions.Close()

	router := api.NewRouter(api.Deps{
		Sessions:   sessions,
		Market:     market,
		Summarizer: summarizer,
		WS:         hub,
		Metrics:    prom,
		Indicators: cfg.Indicators,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fanout.Run(gctx, busIn)
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx, hubIn)
		return nil
	})
	g.Go(func() error {
		hub.RunStatus(gctx, statusPeriod)
		return nil
	})
	if be.redis != nil {
		g.Go(func() error {
			err := be.redis.Subscribe(gctx, busIn)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		return metrics.NewServer(cfg.MetricsAddr, health, nil).Run(gctx)
	})
	g.Go(func() error {
		return serve(gctx, srv, hub)
	})

	slog.Info("server started", "component", "main",
		"http", cfg.HTTPAddr, "metrics", cfg.MetricsAddr, "store", cfg.StoreBackend,
		"market", market.Upstream(), "ai", gen != nil)
	return g.Wait()
}

// serve runs srv until ctx ends, then drains it and disconnects websocket
// clients.
func serve(ctx context.Context, srv *http.Server, hub *gateway.Hub) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server listening", "component", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func (b *backend) redisClient() *goredis.Client {
	if b.redis == nil {
		return nil
	}
	return b.redis.Client()
}

func (b *backend) sqliteDB() *sql.DB {
	if b.sqlite == nil {
		return nil
	}
	return b.sqlite.DB()
}
