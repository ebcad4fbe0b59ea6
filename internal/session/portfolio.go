package session

import (
	"context"
	"errors"
	"log/slog"

	"investor-edu/internal/gamification"
	"investor-edu/internal/model"
	"investor-edu/internal/portfolio"
)

// TradeOutcome is the result of an executed trade.
type TradeOutcome struct {
	Trade     model.Trade                `json:"trade"`
	Portfolio model.Portfolio            `json:"portfolio"`
	Unlocked  []gamification.Achievement `json:"unlocked,omitempty"`
}

// Portfolio returns the profile's current portfolio.
func (m *Manager) Portfolio(ctx context.Context, profile string) (model.Portfolio, error) {
	var p model.Portfolio
	err := m.with(ctx, profile, func(s *session) error {
		p = s.ledger.Snapshot()
		return nil
	})
	return p, err
}

// Trade executes order for profile. Rejections return the ledger's
// sentinel errors and leave all state untouched.
func (m *Manager) Trade(ctx context.Context, profile string, order model.Order) (TradeOutcome, error) {
	var out TradeOutcome
	err := m.with(ctx, profile, func(s *session) error {
		trade, err := s.ledger.Execute(order)
		if err != nil {
			m.cfg.Metrics.TradeRejected(rejectReason(err))
			return err
		}
		m.cfg.Metrics.TradeExecuted(string(trade.Side))

		p := s.ledger.Snapshot()
		levelBefore := s.tracker.Stats().Level
		if len(p.Trades) == 1 {
			s.tracker.AddPoints(gamification.CalculatePoints(gamification.ActionFirstTrade, 0))
		}
		s.tracker.UpdateTradingProfit(p.TotalValue - m.cfg.InitialCash)
		unlocked := m.claim(ctx, profile, s, levelBefore)

		m.persist(ctx, profile, s)
		if m.cfg.Journal != nil {
			if err := m.cfg.Journal.RecordTrade(context.WithoutCancel(ctx), profile, trade); err != nil {
				m.cfg.Metrics.StoreFailed("journal")
				slog.Error("trade journal write failed", "component", "session", "profile", profile, "trade", trade.ID, "error", err)
			}
		}
		m.publish(ctx, profile, KindTrade, p)

		out = TradeOutcome{Trade: trade, Portfolio: p, Unlocked: unlocked}
		return nil
	})
	return out, err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, portfolio.ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, portfolio.ErrInvalidOrder):
		return "invalid_order"
	default:
		return "other"
	}
}

// UpdatePrices revalues held positions and refreshes the trading profit.
func (m *Manager) UpdatePrices(ctx context.Context, profile string, prices map[string]float64) (model.Portfolio, error) {
	var p model.Portfolio
	err := m.with(ctx, profile, func(s *session) error {
		s.ledger.UpdateMarketPrices(prices)
		m.cfg.Metrics.PricesUpdated()
		p = s.ledger.Snapshot()

		levelBefore := s.tracker.Stats().Level
		s.tracker.UpdateTradingProfit(p.TotalValue - m.cfg.InitialCash)
		m.claim(ctx, profile, s, levelBefore)

		m.persist(ctx, profile, s)
		m.publish(ctx, profile, KindPrices, p)
		return nil
	})
	return p, err
}

// ResetPortfolio restores the starting cash balance and clears positions
// and trades. Learning progress is kept.
func (m *Manager) ResetPortfolio(ctx context.Context, profile string) (model.Portfolio, error) {
	var p model.Portfolio
	err := m.with(ctx, profile, func(s *session) error {
		s.ledger.Reset(m.cfg.InitialCash)
		p = s.ledger.Snapshot()
		m.persist(ctx, profile, s)
		m.publish(ctx, profile, KindReset, p)
		return nil
	})
	return p, err
}

// Journal returns up to limit trades, newest first. It reads the durable
// journal when one is configured (which survives portfolio resets) and the
// ledger's trade log otherwise.
func (m *Manager) Journal(ctx context.Context, profile string, limit int) ([]model.Trade, error) {
	if m.cfg.Journal != nil {
		return m.cfg.Journal.RecentTrades(ctx, profile, limit)
	}
	var trades []model.Trade
	err := m.with(ctx, profile, func(s *session) error {
		trades = s.ledger.Snapshot().Trades
		return nil
	})
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, err
}
