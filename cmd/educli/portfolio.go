package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"investor-edu/config"
	"investor-edu/internal/model"
	"investor-edu/internal/portfolio"
	"investor-edu/internal/session"
	redisstore "investor-edu/internal/store/redis"
	sqlitestore "investor-edu/internal/store/sqlite"
)

func portfolioCmd(a *app) *cobra.Command {
	var (
		profile string
		trades  int
	)
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show a stored sandbox portfolio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := session.NormalizeProfile(profile)
			if err != nil {
				return err
			}
			state, journal, closeFn, err := openStores(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			raw, err := state.Load(cmd.Context(), session.PortfolioKeyPrefix+id)
			if err != nil {
				return err
			}
			l := portfolio.NewLedger(a.cfg.InitialCash)
			if raw != nil {
				var p model.Portfolio
				if err := json.Unmarshal(raw, &p); err != nil {
					return fmt.Errorf("stored portfolio for %s is unreadable: %w", id, err)
				}
				l.Restore(p)
			}
			p := l.Snapshot()

			var recent []model.Trade
			if journal != nil && trades > 0 {
				if recent, err = journal.RecentTrades(cmd.Context(), id, trades); err != nil {
					return err
				}
			}

			if a.asJSON {
				return writeJSON(a.out, map[string]any{"portfolio": p, "summary": portfolio.Summarize(p), "journal": recent})
			}
			return printPortfolio(a, id, p, recent)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", session.DefaultProfile, "Learner profile id")
	cmd.Flags().IntVar(&trades, "trades", 10, "Journal entries to show (sqlite store only)")
	return cmd
}

func printPortfolio(a *app, id string, p model.Portfolio, recent []model.Trade) error {
	sum := portfolio.Summarize(p)
	fmt.Fprintf(a.out, "Profile %s\n", id)
	err := renderTable(a.out, []any{"Metric", "Value"}, [][]any{
		{"Cash", inr(p.Cash)},
		{"Invested", inr(p.TotalInvested)},
		{"Total value", inr(p.TotalValue)},
		{"Unrealized P&L", fmt.Sprintf("%s (%s)", inr(p.TotalPnL), pct(p.TotalPnLPercent))},
		{"Realized P&L", inr(p.RealizedPnL)},
		{"Cash share", fmt.Sprintf("%.1f%%", sum.CashPercent)},
	})
	if err != nil {
		return err
	}

	if len(p.Positions) > 0 {
		rows := make([][]any, 0, len(p.Positions))
		for _, pos := range p.Positions {
			rows = append(rows, []any{pos.Symbol, fmt.Sprintf("%d", pos.Quantity), inr(pos.AveragePrice),
				inr(pos.CurrentPrice), inr(pos.MarketValue), pct(pos.UnrealizedPnLPercent)})
		}
		if err := renderTable(a.out, []any{"Symbol", "Qty", "Avg", "Price", "Value", "P&L"}, rows); err != nil {
			return err
		}
	}

	if len(recent) > 0 {
		rows := make([][]any, 0, len(recent))
		for _, t := range recent {
			rows = append(rows, []any{t.Timestamp.Format("2006-01-02 15:04"), string(t.Side), t.Symbol,
				fmt.Sprintf("%d", t.Quantity), inr(t.Price), inr(t.Value)})
		}
		return renderTable(a.out, []any{"Time", "Side", "Symbol", "Qty", "Price", "Value"}, rows)
	}
	return nil
}

// openStores opens the configured backend read-only in spirit: nothing is
// written. The journal is nil for redis.
func openStores(ctx context.Context, cfg *config.Config) (model.StateStore, model.TradeJournal, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		st, err := redisstore.New(ctx, redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, nil, err
		}
		return st, nil, func() { st.Close() }, nil
	case config.BackendSQLite:
		st, err := sqlitestore.Open(sqlitestore.Config{DBPath: cfg.SQLitePath})
		if err != nil {
			return nil, nil, nil, err
		}
		return st, st, func() { st.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("portfolio needs a persistent store, STORE_BACKEND is %q", cfg.StoreBackend)
	}
}
