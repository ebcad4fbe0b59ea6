package indicator

import "math"

// TradingDays is the annualisation factor for daily returns.
const TradingDays = 252

// AnnualizedVolatility returns the population standard deviation of simple
// daily returns scaled by sqrt(252), as a fraction. Returns whose previous
// price is zero or that are not finite are skipped. Fewer than 2 prices, or
// no usable return, yields 0.
func AnnualizedVolatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if prev == 0 {
			continue
		}
		r := (cur - prev) / prev
		if finite(r) {
			returns = append(returns, r)
		}
	}
	if len(returns) == 0 {
		return 0
	}
	return stddev(returns) * math.Sqrt(TradingDays)
}

// MaxDrawdown returns the deepest peak-to-trough decline as a positive
// fraction, e.g. 0.3333 for a fall from 120 to 80. The first price is the
// initial peak. Non-finite prices and non-positive peaks are skipped.
func MaxDrawdown(values []float64) float64 {
	peak := math.NaN()
	mdd := 0.0
	for _, v := range values {
		if !finite(v) {
			continue
		}
		if math.IsNaN(peak) || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < mdd {
			mdd = dd
		}
	}
	return math.Abs(mdd)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	m := mean(xs)
	acc := 0.0
	for _, x := range xs {
		acc += (x - m) * (x - m)
	}
	return math.Sqrt(acc / float64(len(xs)))
}
