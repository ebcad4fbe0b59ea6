package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"investor-edu/internal/markethours"
	"investor-edu/internal/metrics"
	"investor-edu/internal/model"
	"investor-edu/internal/store/memory"
)

const (
	// DefaultSymbol is used when a series is requested without a symbol.
	DefaultSymbol = "AAPL"

	// DefaultCacheTTL is how long upstream answers are reused.
	DefaultCacheTTL = 90 * time.Second

	fallbackDays  = 60
	fallbackStart = 100.0
	fallbackVol   = 0.02
)

// ErrSymbolRequired is returned by Search for an empty symbol.
var ErrSymbolRequired = errors.New("symbol is required")

// Service answers market-data queries. It is safe for concurrent use.
type Service struct {
	client  *Client
	cache   model.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time

	rndMu sync.Mutex
	rng   func() float64

	sf          singleflight.Group
	catalogOnce sync.Once
	catalog     *Catalog
}

// Option configures a Service.
type Option func(*Service)

// WithClient enables upstream fetches. Without it every series is simulated.
func WithClient(c *Client) Option {
	return func(s *Service) { s.client = c }
}

// WithCache replaces the default in-memory cache.
func WithCache(c model.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTTL sets the cache lifetime of upstream answers.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMetrics records fetch and cache metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the random source used by the simulators. rnd must
// return values in [0, 1).
func WithRand(rnd func() float64) Option {
	return func(s *Service) { s.rng = rnd }
}

// NewService creates a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		cache: memory.NewCache(),
		ttl:   DefaultCacheTTL,
		now:   time.Now,
		rng:   rand.Float64,
	}
	for _, o := range opts {
		o(s)
	}
	if s.client != nil && s.client.OnRetry == nil {
		s.client.OnRetry = func(error, time.Duration) { s.metrics.UpstreamRetried() }
	}
	return s
}

// rnd serializes access to the random source so a seeded *rand.Rand
// can back it.
func (s *Service) rnd() float64 {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rng()
}

// Upstream reports the configured upstream, for health output.
func (s *Service) Upstream() string {
	if s.client == nil {
		return SourceOfflineSim
	}
	return SourceAlphaVantage
}

// Daily returns the daily series for symbol (DefaultSymbol when empty).
//
// Upstream problems never surface as errors: a missing API key, a non-2xx
// answer or an unrecognized payload yields a simulated 60-day series with
// Source set to SourceOfflineSim and an explanatory Note. Only upstream
// answers are cached. The error is non-nil only when ctx ends.
func (s *Service) Daily(ctx context.Context, symbol string) (SeriesResponse, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = DefaultSymbol
	}

	if s.client == nil {
		return s.fallback(symbol, "ALPHAVANTAGE_API_KEY not set; returning simulated data."), nil
	}

	key := "market:daily:" + symbol
	resp, err := cached(ctx, s, key, func(ctx context.Context) (SeriesResponse, bool, error) {
		candles, err := s.client.Daily(ctx, symbol)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return SeriesResponse{}, false, ctxErr
			}
			slog.Warn("market upstream failed, serving simulated series",
				"component", "marketdata", "symbol", symbol, "error", err)
			return s.fallback(symbol, fallbackNote(err)), false, nil
		}
		s.metrics.MarketFetched(SourceAlphaVantage)
		return SeriesResponse{Source: SourceAlphaVantage, Symbol: symbol, Series: candles}, true, nil
	})
	if err != nil {
		return SeriesResponse{}, err
	}
	return resp, nil
}

func fallbackNote(err error) string {
	var ue *UpstreamError
	switch {
	case errors.As(err, &ue):
		return fmt.Sprintf("Upstream error %d; returning simulated data.", ue.Status)
	case errors.Is(err, ErrUnexpectedPayload):
		return "Unexpected upstream payload; returning simulated data."
	default:
		return fmt.Sprintf("Runtime error: %v. Returning simulated data.", err)
	}
}

func (s *Service) fallback(symbol, note string) SeriesResponse {
	s.metrics.MarketFetched(SourceOfflineSim)
	return SeriesResponse{
		Source: SourceOfflineSim,
		Note:   note,
		Symbol: symbol,
		Series: RandomWalk(s.rnd, fallbackDays, fallbackStart, fallbackVol, s.now()),
	}
}

// Catalog returns the practice catalog, generating it on first use.
func (s *Service) Catalog() *Catalog {
	s.catalogOnce.Do(func() {
		s.catalog = NewCatalog(s.rnd, s.now())
	})
	return s.catalog
}

// Stock returns a catalog entry by (case-insensitive) symbol.
func (s *Service) Stock(symbol string) (Stock, bool) {
	return s.Catalog().Get(strings.ToUpper(strings.TrimSpace(symbol)))
}

// Indices returns the index snapshot, cached for the service TTL.
func (s *Service) Indices(ctx context.Context) ([]Index, error) {
	return cached(ctx, s, "market:indices", func(context.Context) ([]Index, bool, error) {
		return mockIndices(s.rnd, s.now()), true, nil
	})
}

// TopMovers returns the day's gainers and losers, cached for the service TTL.
func (s *Service) TopMovers(ctx context.Context) (Movers, error) {
	return cached(ctx, s, "market:movers", func(context.Context) (Movers, bool, error) {
		return mockMovers(s.rnd, s.now()), true, nil
	})
}

// Overview bundles indices, movers, trivia and the NSE session status.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	idx, err := s.Indices(ctx)
	if err != nil {
		return Overview{}, err
	}
	mv, err := s.TopMovers(ctx)
	if err != nil {
		return Overview{}, err
	}
	now := s.now()
	return Overview{
		Indices: idx,
		Movers:  mv,
		Trivia:  TriviaOfDay(now),
		Status:  markethours.CurrentStatus(now),
	}, nil
}

// Search returns a quote for symbol: catalog tickers are quoted from their
// generated history, anything else gets a simulated quote.
func (s *Service) Search(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrSymbolRequired
	}
	return cached(ctx, s, "market:stock:"+symbol, func(context.Context) (Quote, bool, error) {
		if st, ok := s.Catalog().Get(symbol); ok {
			return stockQuote(st, s.now()), true, nil
		}
		return mockQuote(s.rnd, symbol, s.now()), true, nil
	})
}

// cached serves key from the cache, or runs load once per concurrent miss
// and stores the result when load marks it cacheable. Cache failures are
// logged and otherwise ignored.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, bool, error)) (T, error) {
	var zero T

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("market cache read failed", "component", "marketdata", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			s.metrics.CacheResult(true)
			return v, nil
		}
	}
	s.metrics.CacheResult(false)

	res, err, _ := s.sf.Do(key, func() (any, error) {
		v, cacheable, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			raw, err := json.Marshal(v)
			if err == nil {
				err = s.cache.Set(ctx, key, raw, s.ttl)
			}
			if err != nil {
				slog.Warn("market cache write failed", "component", "marketdata", "key", key, "error", err)
			}
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
