package indicator

import (
	"fmt"
	"math"

	"investor-edu/internal/ringbuf"
)

// SMA calculates Simple Moving Average over a rolling window.
// A non-finite price keeps the average undefined until it leaves the window.
type SMA struct {
	period  int
	win     *ringbuf.Window
	sum     float64
	bad     int // non-finite prices currently in the window
	current float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period:  period,
		win:     ringbuf.New(period),
		current: math.NaN(),
	}
}

func (s *SMA) Name() string { return fmt.Sprintf("SMA_%d", s.period) }

func (s *SMA) Update(price float64) {
	out, evicted := s.win.Push(price)
	if evicted {
		if finite(out) {
			s.sum -= out
		} else {
			s.bad--
		}
	}
	if finite(price) {
		s.sum += price
	} else {
		s.bad++
	}

	if s.win.Full() && s.bad == 0 {
		s.current = s.sum / float64(s.period)
	} else {
		s.current = math.NaN()
	}
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return !math.IsNaN(s.current) }

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.win.Reset()
	s.sum = 0
	s.bad = 0
	s.current = math.NaN()
}

// SMAOf returns the simple moving average of values. Entry i is undefined
// while fewer than period values have been seen. A period longer than the
// series yields an all-undefined result without allocating a window.
func SMAOf(values []float64, period int) Series {
	if period > len(values) {
		return undefinedSeries(len(values))
	}
	return run(NewSMA(period), values)
}

// run feeds values through ind and records Value after every update.
func run(ind Indicator, values []float64) Series {
	out := undefinedSeries(len(values))
	for i, v := range values {
		ind.Update(v)
		if ind.Ready() {
			out[i] = ind.Value()
		}
	}
	return out
}
