package marketdata

import (
	"math"
	"strings"
	"time"
)

type baseQuote struct {
	symbol, name       string
	price, change, pct float64
	high, low          float64
}

var baseIndices = []Index{
	{Name: "NIFTY 50", Value: 22150.45, Change: 125.3, ChangePercent: 0.57},
	{Name: "SENSEX", Value: 73248.9, Change: -89.45, ChangePercent: -0.12},
}

var baseGainers = []baseQuote{
	{"ADANIPORTS", "Adani Ports", 1245.6, 67.8, 5.76, 1250.0, 1180.0},
	{"TATAMOTORS", "Tata Motors", 890.25, 42.15, 4.97, 895.0, 850.0},
	{"BAJFINANCE", "Bajaj Finance", 6780.9, 285.4, 4.39, 6800.0, 6500.0},
	{"MARUTI", "Maruti Suzuki", 11250.75, 456.25, 4.23, 11280.0, 10800.0},
	{"SUNPHARMA", "Sun Pharma", 1680.4, 65.9, 4.08, 1685.0, 1620.0},
}

var baseLosers = []baseQuote{
	{"COALINDIA", "Coal India", 385.2, -18.75, -4.64, 405.0, 380.0},
	{"ONGC", "ONGC", 245.8, -11.4, -4.43, 260.0, 242.0},
	{"NTPC", "NTPC", 325.65, -14.25, -4.19, 342.0, 320.0},
	{"POWERGRID", "Power Grid", 285.9, -11.8, -3.96, 300.0, 282.0},
	{"DRREDDY", "Dr Reddy's", 5890.45, -225.55, -3.69, 6120.0, 5850.0},
}

var trivia = []string{
	"Did you know? The BSE (Bombay Stock Exchange) is Asia's oldest stock exchange, established in 1875.",
	"The NIFTY 50 represents the weighted average of 50 of the largest Indian companies listed on the NSE.",
	"Market cap is calculated by multiplying the current stock price by the total number of outstanding shares.",
	"A bull market is when stock prices are rising, while a bear market is when they're falling.",
	"The term 'Blue Chip' comes from poker, where blue chips have the highest value.",
	"Sensex stands for 'Sensitive Index' and tracks 30 well-established companies on the BSE.",
	"Volume indicates how many shares were traded - higher volume often means stronger price movements.",
}

// TriviaOfDay picks the trivia line for t's day of month.
func TriviaOfDay(t time.Time) string {
	return trivia[t.Day()%len(trivia)]
}

// jitter returns a uniform value in ±width/2.
func jitter(rnd func() float64, width float64) float64 {
	return (rnd() - 0.5) * width
}

func mockIndices(rnd func() float64, now time.Time) []Index {
	out := make([]Index, len(baseIndices))
	for i, idx := range baseIndices {
		out[i] = Index{
			Name:          idx.Name,
			Value:         round2(idx.Value + jitter(rnd, 100)),
			Change:        round2(jitter(rnd, 200)),
			ChangePercent: round2(jitter(rnd, 2)),
			LastUpdated:   now,
		}
	}
	return out
}

func mockMovers(rnd func() float64, now time.Time) Movers {
	vary := func(in []baseQuote, changeWidth float64) []Quote {
		out := make([]Quote, len(in))
		for i, q := range in {
			out[i] = Quote{
				Symbol:        q.symbol,
				Name:          q.name,
				Price:         round2(q.price + jitter(rnd, 20)),
				Change:        round2(q.change + jitter(rnd, changeWidth)),
				ChangePercent: round2(q.pct + jitter(rnd, 1)),
				High:          q.high,
				Low:           q.low,
				LastUpdated:   now,
			}
		}
		return out
	}
	return Movers{
		Gainers: vary(baseGainers, 10),
		Losers:  vary(baseLosers, 5),
	}
}

// mockQuote simulates a search hit for a symbol outside the catalog.
func mockQuote(rnd func() float64, symbol string, now time.Time) Quote {
	symbol = strings.ToUpper(symbol)
	price := round2(rnd()*1000 + 100)
	return Quote{
		Symbol:        symbol,
		Name:          symbol + " Limited",
		Price:         price,
		Change:        round2(jitter(rnd, 50)),
		ChangePercent: round2(jitter(rnd, 10)),
		High:          round2(math.Max(price, rnd()*1000+150)),
		Low:           round2(math.Min(price, rnd()*1000+50)),
		Volume:        int64(math.Floor(rnd()*1_000_000)) + 100_000,
		LastUpdated:   now,
	}
}

// stockQuote summarizes a catalog entry's latest bar.
func stockQuote(s Stock, now time.Time) Quote {
	q := Quote{
		Symbol:        s.Symbol,
		Name:          s.Name,
		Price:         s.CurrentPrice,
		Change:        s.Change,
		ChangePercent: s.ChangePercent,
		LastUpdated:   now,
	}
	if n := len(s.Data); n > 0 {
		last := s.Data[n-1]
		q.High, q.Low, q.Volume = last.High, last.Low, last.Volume
	}
	return q
}
