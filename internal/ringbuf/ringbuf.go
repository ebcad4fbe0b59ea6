// Package ringbuf provides a fixed-size rolling window of float64 values.
// Indicators use it to keep the trailing N prices or price changes and to
// learn which value drops out of the window on each push.
//
// A Window is not safe for concurrent use; indicator computation runs to
// completion on the caller's goroutine.
package ringbuf

// Window keeps the most recent Size() values. Storage is rounded up to a
// power of two so index wrapping is a mask instead of a modulo.
type Window struct {
	buf  []float64
	mask uint64
	size uint64
	head uint64 // total values pushed
}

// New creates a window holding the last size values. Minimum size is 1.
func New(size int) *Window {
	if size < 1 {
		size = 1
	}
	c := nextPow2(size)
	return &Window{
		buf:  make([]float64, c),
		mask: uint64(c - 1),
		size: uint64(size),
	}
}

// Push appends v. When the window was already full, the value that fell out
// is returned with evicted=true.
func (w *Window) Push(v float64) (out float64, evicted bool) {
	if w.head >= w.size {
		out = w.buf[(w.head-w.size)&w.mask]
		evicted = true
	}
	w.buf[w.head&w.mask] = v
	w.head++
	return out, evicted
}

// Len returns the number of values currently in the window.
func (w *Window) Len() int {
	if w.head < w.size {
		return int(w.head)
	}
	return int(w.size)
}

// Size returns the window length.
func (w *Window) Size() int {
	return int(w.size)
}

// Full reports whether Size() values have been pushed.
func (w *Window) Full() bool {
	return w.head >= w.size
}

// Values returns a copy of the window contents, oldest first.
func (w *Window) Values() []float64 {
	n := uint64(w.Len())
	out := make([]float64, 0, n)
	for i := w.head - n; i < w.head; i++ {
		out = append(out, w.buf[i&w.mask])
	}
	return out
}

// Reset empties the window for reuse.
func (w *Window) Reset() {
	w.head = 0
	for i := range w.buf {
		w.buf[i] = 0
	}
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
