// Package redis is the shared backend: state blobs, the market cache and
// portfolio event pub/sub for multi-instance deployments. Every command
// goes through a circuit breaker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"investor-edu/internal/model"
)

const (
	// DefaultPrefix namespaces every key the store writes.
	DefaultPrefix = "investor-edu"

	portfolioChannel = "portfolio.events"
)

// Config configures the Redis store.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	Prefix   string // default DefaultPrefix

	// Circuit breaker tuning; zero values use 5 failures and 10s.
	MaxFailures  int
	ResetTimeout time.Duration
}

// Store implements model.StateStore, model.Cache and model.EventPublisher.
type Store struct {
	client *goredis.Client
	cb     *CircuitBreaker
	prefix string
}

// Client returns the underlying Redis client for health checks.
func (s *Store) Client() *goredis.Client { return s.client }

// Breaker returns the store's circuit breaker.
func (s *Store) Breaker() *CircuitBreaker { return s.cb }

// New connects to Redis and pings the server.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "component", "redis", "addr", cfg.Addr)
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *goredis.Client, cfg Config) *Store {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	reset := cfg.ResetTimeout
	if reset <= 0 {
		reset = 10 * time.Second
	}
	return &Store{
		client: client,
		cb:     NewCircuitBreaker(maxFailures, reset),
		prefix: prefix,
	}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// Save stores data under key without expiry.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	return s.cb.Execute(func() error {
		if err := s.client.Set(ctx, s.key("state", key), data, 0).Err(); err != nil {
			return fmt.Errorf("redis save %s: %w", key, err)
		}
		return nil
	})
}

// Load returns the blob under key, or nil, nil if absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.cb.Execute(func() error {
		b, err := s.client.Get(ctx, s.key("state", key)).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis load %s: %w", key, err)
		}
		out = b
		return nil
	})
	return out, err
}

// Get reads a cache entry.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		out []byte
		ok  bool
	)
	err := s.cb.Execute(func() error {
		b, err := s.client.Get(ctx, s.key("cache", key)).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis cache get %s: %w", key, err)
		}
		out, ok = b, true
		return nil
	})
	return out, ok, err
}

// Set writes a cache entry that expires after ttl.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.cb.Execute(func() error {
			return s.client.Del(ctx, s.key("cache", key)).Err()
		})
	}
	return s.cb.Execute(func() error {
		if err := s.client.Set(ctx, s.key("cache", key), value, ttl).Err(); err != nil {
			return fmt.Errorf("redis cache set %s: %w", key, err)
		}
		return nil
	})
}

// PublishPortfolio publishes ev on the portfolio channel.
func (s *Store) PublishPortfolio(ctx context.Context, ev model.PortfolioEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal portfolio event: %w", err)
	}
	return s.cb.Execute(func() error {
		return s.client.Publish(ctx, s.key(portfolioChannel), data).Err()
	})
}

// Subscribe forwards portfolio events published by any instance to out
// until ctx is cancelled. Malformed messages are logged and skipped.
func (s *Store) Subscribe(ctx context.Context, out chan<- model.PortfolioEvent) error {
	pubsub := s.client.Subscribe(ctx, s.key(portfolioChannel))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev model.PortfolioEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("bad portfolio event", "component", "redis", "error", err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
