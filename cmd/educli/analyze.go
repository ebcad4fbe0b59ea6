package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"investor-edu/internal/model"
	"investor-edu/internal/strategy"
)

func analyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [symbol]",
		Short: "Compute indicators, risk and a trend read-out for a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) > 0 {
				symbol = args[0]
			}
			series, err := a.market().Daily(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			an := strategy.Analyze(model.Closes(series.Series), a.cfg.Indicators)
			if a.asJSON {
				return writeJSON(a.out, map[string]any{"series": series, "analysis": an})
			}

			if series.Note != "" {
				fmt.Fprintf(a.out, "Note: %s\n", series.Note)
			}
			fmt.Fprintf(a.out, "%s (%s, %d days)\n", series.Symbol, series.Source, len(series.Series))
			return renderTable(a.out, []any{"Metric", "Value"}, analysisRows(an, a.cfg.Indicators.SMAPeriod, a.cfg.Indicators.EMAPeriod))
		},
	}
}

func analysisRows(an strategy.Analysis, smaPeriod, emaPeriod int) [][]any {
	r := an.Indicators
	sma, smaOK := r.SMA.Last()
	ema, emaOK := r.EMA.Last()
	macd, macdOK := r.MACDLine.Last()
	sig, sigOK := r.SignalLine.Last()
	hist, histOK := r.Histogram.Last()
	rsi := "n/a"
	if an.RSI != nil {
		rsi = fmt.Sprintf("%.2f (%s)", *an.RSI, an.RSIZone)
	}

	rows := [][]any{
		{"Last price", fmt.Sprintf("%.2f", an.LastPrice)},
		{fmt.Sprintf("SMA(%d)", smaPeriod), num(sma, smaOK)},
		{fmt.Sprintf("EMA(%d)", emaPeriod), num(ema, emaOK)},
		{"RSI", rsi},
		{"MACD / signal / hist", fmt.Sprintf("%s / %s / %s", num(macd, macdOK), num(sig, sigOK), num(hist, histOK))},
		{"Trend", an.Trend},
		{"Annualized volatility", fmt.Sprintf("%.2f%%", an.Risk.AnnualizedVolatility*100)},
		{"Max drawdown", fmt.Sprintf("%.2f%%", an.Risk.MaxDrawdown*100)},
		{"Signal", fmt.Sprintf("%s: %s", an.Signal.Action, an.Signal.Reason)},
	}
	if n := len(an.Crossovers); n > 0 {
		last := an.Crossovers[n-1]
		rows = append(rows, []any{"Last crossover", fmt.Sprintf("%s at day %d", last.Kind, last.Index)})
	}
	return rows
}
