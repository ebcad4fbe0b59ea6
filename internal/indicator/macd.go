package indicator

// MACDResult holds the three MACD series, each aligned with the input.
type MACDResult struct {
	Line      Series `json:"macdLine"`
	Signal    Series `json:"signalLine"`
	Histogram Series `json:"histogram"`
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(line, signal)
// and histogram = line - signal.
//
// Undefined line entries are fed to the signal EMA as 0, so the signal is
// skewed near the start of the series. Line and histogram stay undefined
// wherever an input is undefined.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	emaFast := EMAOf(values, fast)
	emaSlow := EMAOf(values, slow)

	line := undefinedSeries(len(values))
	zeroed := make([]float64, len(values))
	for i := range values {
		if emaFast.Defined(i) && emaSlow.Defined(i) {
			line[i] = emaFast[i] - emaSlow[i]
			zeroed[i] = line[i]
		}
	}

	sig := EMAOf(zeroed, signal)
	hist := undefinedSeries(len(values))
	for i := range values {
		if line.Defined(i) && sig.Defined(i) {
			hist[i] = line[i] - sig[i]
		}
	}

	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}
