package face

import (
	"math"
)

// TemporalSmoother keeps a bounded history of vector samples and produces an
// exponentially-weighted average on every insertion. Weights follow
// exp(linspace(-2, 0, n)) normalized to sum to 1, so they sharpen toward the
// most recent sample as history accumulates but are defined from the first
// sample on.
//
// The history lives in a fixed-size ring buffer owned by the smoother; the
// only way to discard it is Reset.
type TemporalSmoother struct {
	window int
	dims   int

	buf   [][]float64 // fixed arena of window slots
	head  int         // next write position
	count int         // filled slots, <= window

	last []float64 // last emitted smoothed value
}

// NewTemporalSmoother creates a smoother over vectors of dims components with
// a history of window samples.
func NewTemporalSmoother(window, dims int) *TemporalSmoother {
	if window < 1 {
		window = 1
	}
	buf := make([][]float64, window)
	for i := range buf {
		buf[i] = make([]float64, dims)
	}
	return &TemporalSmoother{
		window: window,
		dims:   dims,
		buf:    buf,
	}
}

// Push inserts a new sample and returns the smoothed value. A nil sample
// (detection momentarily lost) leaves the history untouched and returns the
// last smoothed value, so the output holds steady over brief interruptions
// instead of decaying toward zero.
func (s *TemporalSmoother) Push(sample []float64) []float64 {
	if sample == nil {
		return s.Last()
	}

	copy(s.buf[s.head], sample)
	s.head = (s.head + 1) % s.window
	if s.count < s.window {
		s.count++
	}

	weights := expWeights(s.count)

	if s.last == nil {
		s.last = make([]float64, s.dims)
	}
	for d := 0; d < s.dims; d++ {
		s.last[d] = 0
	}

	// Oldest slot first so the newest sample gets the largest weight
	start := s.head - s.count
	if start < 0 {
		start += s.window
	}
	for i := 0; i < s.count; i++ {
		slot := s.buf[(start+i)%s.window]
		w := weights[i]
		for d := 0; d < s.dims; d++ {
			s.last[d] += w * slot[d]
		}
	}

	return s.last
}

// Last returns the most recent smoothed value, or nil when no sample has
// been pushed since the last Reset.
func (s *TemporalSmoother) Last() []float64 {
	return s.last
}

// Len returns the number of samples currently held.
func (s *TemporalSmoother) Len() int {
	return s.count
}

// Reset discards all history. Called when a new video begins or tracking is
// restarted after a cut.
func (s *TemporalSmoother) Reset() {
	s.head = 0
	s.count = 0
	s.last = nil
}

// expWeights returns exp(linspace(-2, 0, n)) normalized to sum to 1.
func expWeights(n int) []float64 {
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1
		return weights
	}
	var sum float64
	for i := 0; i < n; i++ {
		weights[i] = math.Exp(-2 + 2*float64(i)/float64(n-1))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
