package strategy

import (
	"log/slog"
	"math"

	"investor-edu/internal/indicator"
)

// CrossKind names the direction of a moving-average crossover.
type CrossKind string

const (
	// Golden: fast average crosses above slow.
	Golden CrossKind = "golden"
	// Death: fast average crosses below slow.
	Death CrossKind = "death"
)

// Crossover marks the index at which fast and slow averages crossed.
type Crossover struct {
	Index int       `json:"index"`
	Kind  CrossKind `json:"kind"`
	Fast  float64   `json:"fast"`
	Slow  float64   `json:"slow"`
}

// CrossDetector finds crossovers one bar at a time.
//
// A golden cross is reported when the previous bar had fast <= slow and the
// current bar has fast > slow; a death cross is the mirror image. Bars where
// either average is undefined reset the comparison.
type CrossDetector struct {
	index    int
	prevFast float64
	prevSlow float64
	ready    bool
}

// Update feeds the averages for the next bar and returns the crossover on
// that bar, if any.
func (d *CrossDetector) Update(fast, slow float64) *Crossover {
	i := d.index
	d.index++

	if math.IsNaN(fast) || math.IsNaN(slow) {
		d.ready = false
		return nil
	}

	defer func() {
		d.prevFast = fast
		d.prevSlow = slow
		d.ready = true
	}()

	if !d.ready {
		return nil
	}

	if d.prevFast <= d.prevSlow && fast > slow {
		return &Crossover{Index: i, Kind: Golden, Fast: fast, Slow: slow}
	}
	if d.prevFast >= d.prevSlow && fast < slow {
		return &Crossover{Index: i, Kind: Death, Fast: fast, Slow: slow}
	}
	return nil
}

// Crossovers returns every crossover between two aligned series.
func Crossovers(fast, slow indicator.Series) []Crossover {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	var d CrossDetector
	var out []Crossover
	for i := 0; i < n; i++ {
		if c := d.Update(fast[i], slow[i]); c != nil {
			out = append(out, *c)
		}
	}
	slog.Debug("crossovers detected", "component", "strategy", "bars", n, "count", len(out))
	return out
}
