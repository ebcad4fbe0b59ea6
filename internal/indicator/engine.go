package indicator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Result is the full indicator set for one price series.
type Result struct {
	SMA        Series `json:"sma"`
	EMA        Series `json:"ema"`
	RSI        Series `json:"rsi"`
	MACDLine   Series `json:"macdLine"`
	SignalLine Series `json:"signalLine"`
	Histogram  Series `json:"histogram"`
}

// Risk holds whole-series risk statistics as fractions.
type Risk struct {
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
}

// Compute runs every indicator in cfg over values. Zero periods take their
// defaults; callers wanting strict input should call cfg.Validate first.
func Compute(values []float64, cfg Config) Result {
	cfg = cfg.WithDefaults()
	m := MACD(values, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	return Result{
		SMA:        SMAOf(values, cfg.SMAPeriod),
		EMA:        EMAOf(values, cfg.EMAPeriod),
		RSI:        RSIOf(values, cfg.RSIPeriod),
		MACDLine:   m.Line,
		SignalLine: m.Signal,
		Histogram:  m.Histogram,
	}
}

// ComputeRisk returns volatility and drawdown for values.
func ComputeRisk(values []float64) Risk {
	return Risk{
		AnnualizedVolatility: AnnualizedVolatility(values),
		MaxDrawdown:          MaxDrawdown(values),
	}
}

// Round rounds x half away from zero to the given decimal places.
// Non-finite input is returned unchanged.
func Round(x float64, places int32) float64 {
	if !finite(x) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Percent converts a fraction to a percentage rounded to 2 places.
func Percent(fraction float64) float64 {
	return Round(fraction*100, 2)
}

// RoundSeries rounds every defined entry of s.
func RoundSeries(s Series, places int32) Series {
	out := make(Series, len(s))
	for i, v := range s {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = Round(v, places)
	}
	return out
}
