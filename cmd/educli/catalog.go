package main

import (
	"github.com/spf13/cobra"
)

func catalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the practice tickers with their current prices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stocks := a.market().Catalog().Stocks()
			if a.asJSON {
				return writeJSON(a.out, stocks)
			}
			rows := make([][]any, 0, len(stocks))
			for _, st := range stocks {
				rows = append(rows, []any{st.Symbol, st.Name, st.Sector, inr(st.CurrentPrice), pct(st.ChangePercent)})
			}
			return renderTable(a.out, []any{"Symbol", "Name", "Sector", "Price", "Change"}, rows)
		},
	}
}
