package lipsync

import (
	"math"
	"testing"

	"smart-cropper/internal/services/face"
)

// mouthMesh builds a minimal point set where the mouth opening ratio is
// opening (mouth width fixed at 0.2).
func mouthMesh(opening float64) []face.Point {
	points := make([]face.Point, face.MouthRightIndex+1)
	points[face.MouthTopIndex] = face.Point{X: 0.5, Y: 0.5 - opening*0.1}
	points[face.MouthBottomIndex] = face.Point{X: 0.5, Y: 0.5 + opening*0.1}
	points[face.MouthLeftIndex] = face.Point{X: 0.4, Y: 0.5}
	points[face.MouthRightIndex] = face.Point{X: 0.6, Y: 0.5}
	return points
}

func TestMouthOpening(t *testing.T) {
	got := MouthOpening(mouthMesh(0.5))
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("mouth opening: got %v, want 0.5", got)
	}

	if MouthOpening(nil) != 0 {
		t.Error("nil points should read as closed")
	}
	if MouthOpening(make([]face.Point, 50)) != 0 {
		t.Error("short point set should read as closed")
	}
}

func TestCorrelateIdenticalSeries(t *testing.T) {
	series := []float64{0.1, 0.4, 0.2, 0.5, 0.3, 0.6, 0.2, 0.4}
	if got := correlate(series, series); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical series: got %v, want 1.0", got)
	}
}

func TestCorrelateAntiCorrelatedSeries(t *testing.T) {
	mouth := []float64{0.1, 0.4, 0.2, 0.5, 0.3, 0.6}
	energy := make([]float64, len(mouth))
	for i, v := range mouth {
		energy[i] = 1 - v
	}
	// Absolute value: perfectly inverted series still count as linked
	if got := correlate(mouth, energy); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("anti-correlated series: got %v, want 1.0", got)
	}
}

func TestCorrelateUnrelatedSeries(t *testing.T) {
	n := 20
	mouth := make([]float64, n)
	energy := make([]float64, n)
	for i := 0; i < n; i++ {
		mouth[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
		if i%2 == 0 {
			energy[i] = 1
		} else {
			energy[i] = -1
		}
	}

	if got := correlate(mouth, energy); got > 0.3 {
		t.Errorf("smooth vs alternating series should not correlate, got %v", got)
	}
}

func TestCorrelateZeroVariance(t *testing.T) {
	flat := []float64{0.5, 0.5, 0.5, 0.5}
	moving := []float64{0.1, 0.9, 0.1, 0.9}
	if got := correlate(flat, moving); got != 0 {
		t.Errorf("zero-variance series must correlate as 0, got %v", got)
	}
}

func TestObserveNeedsHistory(t *testing.T) {
	d := NewDetector(10, 0.3, 0.15)

	r := d.Observe(0.5, 1.0)
	if r.IsSpeaking || r.Confidence != 0 {
		t.Errorf("no speaking verdict before half the window fills: %+v", r)
	}
}

func TestObserveDetectsSpeaking(t *testing.T) {
	d := NewDetector(10, 0.3, 0.15)

	var r Result
	for i := 0; i < 20; i++ {
		// Mouth oscillates open/closed, energy follows in lockstep,
		// ending on an open frame
		opening := 0.1
		if i%2 == 1 {
			opening = 0.5
		}
		r = d.Observe(opening, opening*2)
	}

	if !r.IsSpeaking {
		t.Fatalf("correlated open mouth with audio should read as speaking: %+v", r)
	}
	if r.Confidence <= 0.3 {
		t.Errorf("confidence should carry the correlation, got %v", r.Confidence)
	}
}

func TestObserveClosedMouthNeverSpeaks(t *testing.T) {
	d := NewDetector(10, 0.3, 0.15)

	var r Result
	for i := 0; i < 20; i++ {
		r = d.Observe(0.02, 1.0)
	}
	if r.IsSpeaking {
		t.Errorf("closed mouth must not speak regardless of audio: %+v", r)
	}
}

func TestObserveSilenceNeverSpeaks(t *testing.T) {
	d := NewDetector(10, 0.3, 0.15)

	var r Result
	for i := 0; i < 20; i++ {
		opening := 0.1
		if i%2 == 1 {
			opening = 0.5
		}
		r = d.Observe(opening, 0)
	}
	if r.IsSpeaking {
		t.Errorf("zero audio energy must not speak: %+v", r)
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(10, 0.3, 0.15)
	for i := 0; i < 20; i++ {
		d.Observe(0.5, 1.0)
	}
	d.Reset()

	r := d.Observe(0.5, 1.0)
	if r.IsSpeaking || r.Confidence != 0 {
		t.Errorf("reset should clear the history: %+v", r)
	}
}

func TestMultiPersonVotesForMovingMouth(t *testing.T) {
	m := NewMultiPerson(4, 10, 0.3, 0.15)

	var vote int
	var scores []Score
	for i := 0; i < 30; i++ {
		opening := 0.1
		if i%2 == 1 {
			opening = 0.5
		}
		faces := []face.FaceObservation{
			{Landmarks: mouthMesh(0.05)},    // closed mouth
			{Landmarks: mouthMesh(opening)}, // talking
		}
		vote, scores = m.AnalyzeFrame(faces, opening*2)
	}

	if vote != 1 {
		t.Fatalf("vote should pick the moving mouth, got %d (scores %+v)", vote, scores)
	}
	if scores[0].FaceID != 1 {
		t.Errorf("scores not sorted by confidence: %+v", scores)
	}
}

func TestMultiPersonNoFaces(t *testing.T) {
	m := NewMultiPerson(4, 10, 0.3, 0.15)
	vote, scores := m.AnalyzeFrame(nil, 1.0)
	if vote != NoSpeaker || scores != nil {
		t.Errorf("no faces: got vote %d, scores %+v", vote, scores)
	}
}
