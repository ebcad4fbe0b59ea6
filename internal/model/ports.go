package model

import (
	"context"
	"time"
)

// ── Storage Port Interfaces ──
// These interfaces decouple session state handling from concrete storage
// implementations (SQLite, Redis, memory).

// StateStore persists opaque JSON blobs under a single well-known key.
type StateStore interface {
	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the blob stored under key.
	// Returns nil, nil if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Close releases underlying resources.
	Close() error
}

// TradeJournal keeps an append-only audit trail of executed trades.
type TradeJournal interface {
	// RecordTrade appends a trade for the given profile.
	RecordTrade(ctx context.Context, profile string, trade Trade) error

	// RecentTrades returns the newest trades first, at most limit of them.
	RecentTrades(ctx context.Context, profile string, limit int) ([]Trade, error)
}

// EventPublisher fans portfolio events out to other processes.
type EventPublisher interface {
	PublishPortfolio(ctx context.Context, ev PortfolioEvent) error
}

// Cache is a TTL byte cache used for upstream market responses.
type Cache interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
