package indicator

import (
	"fmt"
	"math"

	"investor-edu/internal/ringbuf"
)

// rsInfinite stands in for RS when the window holds no losses, which
// saturates RSI just under 100.
const rsInfinite = 100.0

// RSI calculates the Relative Strength Index over a trailing window of
// period price changes. Average gain and loss are kept as rolling sums:
// each update adds the newest change and subtracts the one leaving the
// window. Update is O(1) per price.
type RSI struct {
	period    int
	gains     *ringbuf.Window
	losses    *ringbuf.Window
	gainSum   float64
	lossSum   float64
	prevClose float64
	count     int
	current   float64
}

// NewRSI creates a new RSI indicator with the given period (typically 14).
func NewRSI(period int) *RSI {
	if period < 1 {
		period = 1
	}
	return &RSI{
		period:  period,
		gains:   ringbuf.New(period),
		losses:  ringbuf.New(period),
		current: math.NaN(),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI_%d", r.period) }

// Update feeds the next close. The first period+1 closes produce no value.
// Non-finite closes are skipped.
func (r *RSI) Update(price float64) {
	if !finite(price) {
		r.current = math.NaN()
		return
	}
	r.count++
	if r.count == 1 {
		r.prevClose = price
		return
	}

	change := price - r.prevClose
	r.prevClose = price

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}
	if out, ok := r.gains.Push(gain); ok {
		r.gainSum -= out
	}
	if out, ok := r.losses.Push(loss); ok {
		r.lossSum -= out
	}
	r.gainSum += gain
	r.lossSum += loss

	if r.count <= r.period+1 {
		r.current = math.NaN()
		return
	}

	p := float64(r.period)
	avgGain := math.Max(r.gainSum, 0) / p
	avgLoss := r.lossSum / p

	rs := rsInfinite
	if avgLoss > 1e-12 {
		rs = avgGain / avgLoss
	}
	r.current = 100.0 - 100.0/(1.0+rs)
}

func (r *RSI) Value() float64 { return r.current }
func (r *RSI) Ready() bool    { return !math.IsNaN(r.current) }

// Reset clears the RSI state for reuse.
func (r *RSI) Reset() {
	r.gains.Reset()
	r.losses.Reset()
	r.gainSum = 0
	r.lossSum = 0
	r.prevClose = 0
	r.count = 0
	r.current = math.NaN()
}

// RSIOf returns the RSI of values aligned with the input. The first
// period+1 entries are undefined, so a series of period+1 values or fewer
// is all undefined.
func RSIOf(values []float64, period int) Series {
	if period >= len(values)-1 {
		return undefinedSeries(len(values))
	}
	return run(NewRSI(period), values)
}
