package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"investor-edu/internal/model"
	"investor-edu/internal/portfolio"
)

func simulateCmd(a *app) *cobra.Command {
	var (
		tradesPath string
		seriesPath string
		symbol     string
		cash       float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a trade list and value it at the last close",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var trades []portfolio.SimTrade
			if err := readJSONFile(tradesPath, &trades); err != nil {
				return fmt.Errorf("trades: %w", err)
			}

			var series []model.Candle
			if seriesPath != "" {
				if err := readJSONFile(seriesPath, &series); err != nil {
					return fmt.Errorf("series: %w", err)
				}
			} else {
				resp, err := a.market().Daily(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				series = resp.Series
			}
			if cash <= 0 {
				cash = a.cfg.InitialCash
			}

			res := portfolio.Simulate(cash, trades, series)
			if a.asJSON {
				return writeJSON(a.out, res)
			}
			return renderTable(a.out, []any{"Metric", "Value"}, [][]any{
				{"Trades", fmt.Sprintf("%d", len(trades))},
				{"Cash", inr(res.Cash)},
				{"Position", fmt.Sprintf("%d @ %s", res.PositionQty, inr(res.AvgCost))},
				{"Final value", inr(res.Value)},
				{"Return", pct((res.Value - cash) / cash * 100)},
				{"Annualized volatility", fmt.Sprintf("%.2f%%", res.AnnualizedVolatility)},
				{"Max drawdown", fmt.Sprintf("%.2f%%", res.MaxDrawdown)},
			})
		},
	}
	cmd.Flags().StringVar(&tradesPath, "trades", "", "JSON file with [{side, qty, price, ticker?, ts?}]")
	cmd.Flags().StringVar(&seriesPath, "series", "", "JSON file with daily candles (default: fetch --symbol)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Symbol whose daily series values the result")
	cmd.Flags().Float64Var(&cash, "cash", 0, "Starting cash (default: INITIAL_CASH)")
	_ = cmd.MarkFlagRequired("trades")
	return cmd
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
