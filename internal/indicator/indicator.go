// Package indicator provides technical indicator calculations over closing
// price series.
//
// Each indicator has a streaming form implementing the Indicator interface
// (one price in, one value out) and a batch form that maps a whole series to
// an output Series aligned index-for-index with the input. Indicators never
// fail: insufficient history or unusable input yields undefined entries.
package indicator

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Indicator is the interface for streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_20", "EMA_12").
	Name() string

	// Update feeds the next closing price and recalculates.
	Update(price float64)

	// Value returns the current value, or NaN when not enough data has
	// been accumulated.
	Value() float64

	// Ready returns true when Value is defined.
	Ready() bool

	// Reset clears all state for reuse.
	Reset()
}

// Series is an indicator output aligned with its input prices.
// Undefined entries hold NaN and encode as JSON null.
type Series []float64

func undefinedSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Defined reports whether index i holds a value.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// Last returns the final entry and whether it is defined.
func (s Series) Last() (float64, bool) {
	if len(s) == 0 || math.IsNaN(s[len(s)-1]) {
		return 0, false
	}
	return s[len(s)-1], true
}

// MarshalJSON encodes undefined entries as null.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	var b bytes.Buffer
	b.Grow(len(s) * 8)
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes null entries as undefined.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Series, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	*s = out
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
