package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"investor-edu/internal/model"
)

// RecordTrade appends trade to the profile's journal.
func (s *Store) RecordTrade(ctx context.Context, profile string, t model.Trade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (trade_id, profile, symbol, side, qty, price, value, traded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, profile, t.Symbol, string(t.Side), t.Quantity, t.Price, t.Value,
		t.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite record trade: %w", err)
	}
	return nil
}

// RecentTrades returns the profile's last limit trades, newest first.
// limit <= 0 returns every trade.
func (s *Store) RecentTrades(ctx context.Context, profile string, limit int) ([]model.Trade, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT trade_id, symbol, side, qty, price, value, traded_at
		 FROM trades WHERE profile = ? ORDER BY id DESC LIMIT ?`, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query trades: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		var (
			t    model.Trade
			side string
			ts   string
		)
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.Quantity, &t.Price, &t.Value, &ts); err != nil {
			return nil, fmt.Errorf("sqlite scan trade: %w", err)
		}
		t.Side = model.Side(side)
		if t.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			slog.Warn("bad trade timestamp in journal", "component", "sqlite", "trade", t.ID, "value", ts)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
