package indicator

import (
	"fmt"
	"math"
)

// EMA calculates Exponential Moving Average with smoothing factor
// k = 2/(period+1). The first price seeds the average and produces no
// output; every later price produces a value. O(1) per update.
type EMA struct {
	period     int
	multiplier float64
	prev       float64
	seeded     bool
	current    float64
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
		current:    math.NaN(),
	}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA_%d", e.period) }

// Update applies EMA = price*k + prev*(1-k). Non-finite prices are skipped
// and leave the output undefined for that step.
func (e *EMA) Update(price float64) {
	if !finite(price) {
		e.current = math.NaN()
		return
	}
	if !e.seeded {
		e.prev = price
		e.seeded = true
		e.current = math.NaN()
		return
	}
	e.current = price*e.multiplier + e.prev*(1-e.multiplier)
	e.prev = e.current
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return !math.IsNaN(e.current) }

// Reset clears the EMA state for reuse.
func (e *EMA) Reset() {
	e.prev = 0
	e.seeded = false
	e.current = math.NaN()
}

// EMAOf returns the exponential moving average of values. The first entry
// is always undefined.
func EMAOf(values []float64, period int) Series {
	return run(NewEMA(period), values)
}
