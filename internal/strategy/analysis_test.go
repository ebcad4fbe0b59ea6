package strategy

import (
	"math"
	"testing"

	"investor-edu/internal/indicator"
)

var nan = math.NaN()

func TestCrossovers(t *testing.T) {
	fast := indicator.Series{nan, 1, 3, 4, 2, 2}
	slow := indicator.Series{nan, 2, 2, 3, 3, 2}

	got := Crossovers(fast, slow)
	if len(got) != 2 {
		t.Fatalf("expected 2 crossovers, got %d: %+v", len(got), got)
	}
	if got[0].Index != 2 || got[0].Kind != Golden {
		t.Errorf("first crossover = %+v, want golden at 2", got[0])
	}
	if got[1].Index != 4 || got[1].Kind != Death {
		t.Errorf("second crossover = %+v, want death at 4", got[1])
	}
}

func TestCrossovers_UndefinedResets(t *testing.T) {
	// The gap at index 2 means index 3 has no previous bar to compare with.
	fast := indicator.Series{1, 1, nan, 5}
	slow := indicator.Series{2, 2, nan, 2}
	if got := Crossovers(fast, slow); len(got) != 0 {
		t.Fatalf("expected no crossovers across a gap, got %+v", got)
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name string
		sma  indicator.Series
		ema  indicator.Series
		want string
	}{
		{"ema above", indicator.Series{10}, indicator.Series{11}, Bullish},
		{"ema below", indicator.Series{10}, indicator.Series{9}, Bearish},
		{"equal", indicator.Series{10}, indicator.Series{10}, Bearish},
		{"sma undefined", indicator.Series{nan}, indicator.Series{9}, Neutral},
		{"empty", nil, nil, Neutral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Trend(indicator.Result{SMA: tc.sma, EMA: tc.ema})
			if got != tc.want {
				t.Errorf("Trend() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRSIZone(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{75, ZoneOverbought},
		{70, ZoneNeutral},
		{50, ZoneNeutral},
		{30, ZoneNeutral},
		{12, ZoneOversold},
		{nan, ""},
	}
	for _, tc := range tests {
		if got := RSIZone(tc.v); got != tc.want {
			t.Errorf("RSIZone(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestAnalyze_RisingSeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	a := Analyze(values, indicator.DefaultConfig())

	if a.Trend != Bullish {
		t.Errorf("Trend = %q, want Bullish", a.Trend)
	}
	if a.RSI == nil || a.RSIZone != ZoneOverbought {
		t.Errorf("expected overbought RSI, got zone %q", a.RSIZone)
	}
	if a.LastPrice != 159 {
		t.Errorf("LastPrice = %v, want 159", a.LastPrice)
	}
	if a.Risk.MaxDrawdown != 0 || a.HighDrawdown {
		t.Errorf("rising series should have no drawdown, got %v", a.Risk.MaxDrawdown)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil, indicator.Config{})
	if a.Trend != Neutral || a.RSI != nil || a.Signal.Action != ActionHold {
		t.Errorf("unexpected analysis for empty series: %+v", a)
	}
}

func TestSuggest_RSIFilter(t *testing.T) {
	rsi := indicator.Series{80, 20}
	got := suggest([]Crossover{{Index: 0, Kind: Golden}}, rsi)
	if got.Action != ActionHold {
		t.Errorf("golden cross with RSI 80: action %s, want HOLD", got.Action)
	}
	got = suggest([]Crossover{{Index: 1, Kind: Death}}, rsi)
	if got.Action != ActionHold {
		t.Errorf("death cross with RSI 20: action %s, want HOLD", got.Action)
	}
	got = suggest([]Crossover{{Index: 1, Kind: Golden}}, rsi)
	if got.Action != ActionBuy {
		t.Errorf("golden cross with RSI 20: action %s, want BUY", got.Action)
	}
}
