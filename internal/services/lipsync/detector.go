// Package lipsync correlates mouth movement from face landmarks with the
// audio energy signal to infer which person on screen is speaking.
package lipsync

import (
	"math"

	"smart-cropper/internal/services/face"
)

// maxLag is how many frames of audio/video lead-lag the correlation
// tolerates, to absorb small pipeline jitter.
const maxLag = 2

// Result is the per-frame speaking assessment for one face track.
type Result struct {
	IsSpeaking   bool
	Confidence   float64
	MouthOpening float64
	Correlation  float64
}

// Detector tracks one face's mouth-opening series against the audio energy
// series over a bounded window and scores how well they correlate.
type Detector struct {
	windowSize      int
	threshold       float64
	minMouthOpening float64

	// Fixed-size ring buffers of (mouth opening, audio energy) pairs
	mouth  []float64
	energy []float64
	head   int
	count  int
}

// NewDetector creates a detector with the given correlation window.
// threshold is the minimum correlation to consider someone speaking,
// minMouthOpening the minimum mouth-opening ratio.
func NewDetector(windowSize int, threshold, minMouthOpening float64) *Detector {
	if windowSize < 2 {
		windowSize = 2
	}
	return &Detector{
		windowSize:      windowSize,
		threshold:       threshold,
		minMouthOpening: minMouthOpening,
		mouth:           make([]float64, windowSize),
		energy:          make([]float64, windowSize),
	}
}

// MouthOpening computes the mouth-opening ratio from a landmark point set:
// vertical inner-lip distance normalized by mouth width, so the measure is
// invariant to face size. A nil or short set reads as a closed mouth.
func MouthOpening(points []face.Point) float64 {
	if len(points) <= face.MouthRightIndex {
		return 0
	}

	top := points[face.MouthTopIndex]
	bottom := points[face.MouthBottomIndex]
	vertical := math.Hypot(top.X-bottom.X, top.Y-bottom.Y)

	left := points[face.MouthLeftIndex]
	right := points[face.MouthRightIndex]
	width := math.Hypot(left.X-right.X, left.Y-right.Y)

	if width <= 0 {
		return 0
	}
	return vertical / width
}

// Observe inserts this frame's (mouth opening, audio energy) pair and
// returns the speaking assessment. Confidence stays at zero until half the
// window has accumulated.
func (d *Detector) Observe(mouthOpening, audioEnergy float64) Result {
	d.mouth[d.head] = mouthOpening
	d.energy[d.head] = audioEnergy
	d.head = (d.head + 1) % d.windowSize
	if d.count < d.windowSize {
		d.count++
	}

	result := Result{MouthOpening: mouthOpening}

	if d.count < d.windowSize/2 {
		return result
	}

	mouth := d.series(d.mouth)
	energy := d.series(d.energy)
	result.Correlation = correlate(mouth, energy)

	// Three independent weak signals, jointly more reliable than any one:
	// the mouth is open, audio is present, and the two series move together.
	mouthActive := mouthOpening > d.minMouthOpening
	audioActive := audioEnergy > mean(energy)*0.5
	correlated := result.Correlation > d.threshold

	if mouthActive && audioActive && correlated {
		result.IsSpeaking = true
		result.Confidence = result.Correlation
	}

	return result
}

// Reset clears the history, e.g. for a new video.
func (d *Detector) Reset() {
	d.head = 0
	d.count = 0
}

// series returns the buffered values in chronological order.
func (d *Detector) series(buf []float64) []float64 {
	out := make([]float64, d.count)
	start := d.head - d.count
	if start < 0 {
		start += d.windowSize
	}
	for i := 0; i < d.count; i++ {
		out[i] = buf[(start+i)%d.windowSize]
	}
	return out
}

// correlate z-normalizes both series and returns the maximum absolute
// cross-correlation over small lags, normalized by the window length. A
// near-zero standard deviation in either series defines the correlation as
// 0 rather than dividing by it.
func correlate(mouth, energy []float64) float64 {
	n := len(mouth)
	if n < 2 || len(energy) != n {
		return 0
	}

	mouthNorm, ok1 := zNormalize(mouth)
	energyNorm, ok2 := zNormalize(energy)
	if !ok1 || !ok2 {
		return 0
	}

	best := 0.0
	for lag := -maxLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i < n; i++ {
			j := i + lag
			if j < 0 || j >= n {
				continue
			}
			sum += mouthNorm[i] * energyNorm[j]
		}
		best = math.Max(best, math.Abs(sum)/float64(n))
	}
	return best
}

func zNormalize(series []float64) ([]float64, bool) {
	m := mean(series)
	var variance float64
	for _, v := range series {
		variance += (v - m) * (v - m)
	}
	std := math.Sqrt(variance / float64(len(series)))
	if std < 1e-10 {
		return nil, false
	}

	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = (v - m) / std
	}
	return out, true
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
