// Package strategy turns indicator output into the plain-language market
// read-out shown to learners: trend direction, RSI zone, moving-average
// crossovers and a suggested action.
package strategy

import (
	"math"

	"investor-edu/internal/indicator"
)

// Trend labels.
const (
	Bullish = "Bullish"
	Bearish = "Bearish"
	Neutral = "Neutral"
)

// RSI zones.
const (
	ZoneOverbought = "overbought"
	ZoneOversold   = "oversold"
	ZoneNeutral    = "neutral"

	overboughtLevel = 70.0
	oversoldLevel   = 30.0
)

// HighDrawdown is the drawdown fraction above which a series is flagged as risky.
const HighDrawdown = 0.25

// Action is a suggested trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the suggestion derived from the latest crossover.
type Signal struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// Analysis bundles everything the analysis view renders for a series.
type Analysis struct {
	Indicators   indicator.Result `json:"indicators"`
	Risk         indicator.Risk   `json:"risk"`
	LastPrice    float64          `json:"lastPrice"`
	Trend        string           `json:"trend"`
	RSI          *float64         `json:"rsi"`
	RSIZone      string           `json:"rsiZone"`
	HighDrawdown bool             `json:"highDrawdown"`
	Crossovers   []Crossover      `json:"crossovers"`
	Signal       Signal           `json:"signal"`
}

// Trend compares the latest EMA with the latest SMA. When either is
// undefined the trend is Neutral; an EMA not above the SMA reads Bearish.
func Trend(r indicator.Result) string {
	sma, okS := r.SMA.Last()
	ema, okE := r.EMA.Last()
	if !okS || !okE {
		return Neutral
	}
	if ema > sma {
		return Bullish
	}
	return Bearish
}

// RSIZone classifies an RSI reading. NaN yields "".
func RSIZone(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case v > overboughtLevel:
		return ZoneOverbought
	case v < oversoldLevel:
		return ZoneOversold
	default:
		return ZoneNeutral
	}
}

// Analyze computes indicators and risk for values and derives the read-out.
func Analyze(values []float64, cfg indicator.Config) Analysis {
	res := indicator.Compute(values, cfg)
	risk := indicator.ComputeRisk(values)

	a := Analysis{
		Indicators:   res,
		Risk:         risk,
		Trend:        Trend(res),
		HighDrawdown: risk.MaxDrawdown > HighDrawdown,
		Crossovers:   Crossovers(res.EMA, res.SMA),
	}
	if len(values) > 0 {
		a.LastPrice = values[len(values)-1]
	}
	if v, ok := res.RSI.Last(); ok {
		a.RSI = &v
		a.RSIZone = RSIZone(v)
	}
	a.Signal = suggest(a.Crossovers, res.RSI)
	return a
}

// suggest turns the most recent crossover into an action. A golden cross is
// ignored while RSI is overbought, a death cross while RSI is oversold.
func suggest(crosses []Crossover, rsi indicator.Series) Signal {
	if len(crosses) == 0 {
		return Signal{Action: ActionHold, Reason: "no moving-average crossover yet"}
	}
	c := crosses[len(crosses)-1]
	zone := ""
	if rsi.Defined(c.Index) {
		zone = RSIZone(rsi[c.Index])
	}
	switch c.Kind {
	case Golden:
		if zone == ZoneOverbought {
			return Signal{Action: ActionHold, Reason: "golden cross filtered: RSI overbought"}
		}
		return Signal{Action: ActionBuy, Reason: "golden cross (EMA above SMA)"}
	default:
		if zone == ZoneOversold {
			return Signal{Action: ActionHold, Reason: "death cross filtered: RSI oversold"}
		}
		return Signal{Action: ActionSell, Reason: "death cross (EMA below SMA)"}
	}
}
