// Command educli is the terminal companion to the investor-education
// server: analyze a ticker, replay a practice trade list, summarize a
// circular and inspect a stored sandbox portfolio.
//
// Usage:
//
//	educli analyze RELIANCE
//	educli simulate --trades trades.json --symbol TCS
//	educli summarize --url https://www.sebi.gov.in/... --lang hi
//	educli portfolio --profile alice
//	educli catalog
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"investor-edu/config"
	"investor-edu/internal/logger"
	"investor-edu/internal/marketdata"
)

type app struct {
	cfg     *config.Config
	out     io.Writer
	asJSON  bool
	verbose bool
}

func main() {
	a := &app{out: os.Stdout}
	root := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "educli",
		Short:         "Investor education toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			logger.Init("educli", level, "text")
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.SetOut(a.out)

	root.AddCommand(
		analyzeCmd(a),
		simulateCmd(a),
		summarizeCmd(a),
		portfolioCmd(a),
		catalogCmd(a),
	)
	return root
}

// market builds the market service from configuration. Without an Alpha
// Vantage key every series is simulated.
func (a *app) market() *marketdata.Service {
	opts := []marketdata.Option{marketdata.WithTTL(a.cfg.MarketCacheTTL)}
	if a.cfg.AlphaVantageKey != "" {
		opts = append(opts, marketdata.WithClient(marketdata.NewClient(a.cfg.AlphaVantageBaseURL, a.cfg.AlphaVantageKey)))
	}
	return marketdata.NewService(opts...)
}
