package sustain

import "math"

// Welford is an online accumulator for running variance. It replaces an
// unbounded per-sample history with O(1) state while preserving the
// population standard deviation over everything added so far.
type Welford struct {
	n    int64
	mean float64
	m2   float64
}

// Add folds one sample into the accumulator.
func (w *Welford) Add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

// Count returns the number of samples added.
func (w *Welford) Count() int64 {
	return w.n
}

// Mean returns the running mean, or 0 with no samples.
func (w *Welford) Mean() float64 {
	return w.mean
}

// Variance returns the population variance over all samples added, or 0
// with no samples.
func (w *Welford) Variance() float64 {
	if w.n == 0 {
		return 0
	}
	return w.m2 / float64(w.n)
}

// StdDev returns the population standard deviation.
func (w *Welford) StdDev() float64 {
	return math.Sqrt(w.Variance())
}
