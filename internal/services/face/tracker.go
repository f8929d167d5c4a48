package face

import (
	"log"
)

const (
	// Maximum consecutive frames to carry forward the last smoothed position
	maxMissingFrames = 30

	// Maximum spatial jump between detections (normalized units). A larger
	// jump means a cut or a different person; history is reset instead of
	// being smoothed across it.
	maxSpatialJump = 0.3
)

// Tracker manages temporal stabilization of one face track. It wraps a
// TemporalSmoother with spatial-consistency and missing-detection handling.
type Tracker struct {
	smoother *TemporalSmoother
	missed   int
	lastObs  *FaceObservation // latest raw observation, keeps landmarks fresh
}

// NewTracker creates a tracker with the given smoothing window.
func NewTracker(window int) *Tracker {
	return &Tracker{
		// cx, cy, w, h, angle, eyesX, eyesY
		smoother: NewTemporalSmoother(window, 7),
	}
}

// Update processes a new observation (or nil for a missed detection) and
// returns the smoothed result. On a miss the last smoothed position is
// carried forward; after maxMissingFrames consecutive misses the track is
// dropped and nil is returned.
func (t *Tracker) Update(obs *FaceObservation) *FaceObservation {
	if obs == nil {
		return t.handleMiss()
	}

	if t.lastObs != nil && !t.isSpatiallyConsistent(obs) {
		log.Printf("[TRACKER] Spatial jump detected, resetting track")
		t.smoother.Reset()
	}

	t.missed = 0
	t.lastObs = obs

	c := obs.Center()
	smoothed := t.smoother.Push([]float64{
		c.X, c.Y, obs.Width, obs.Height, obs.Angle,
		obs.EyesCenter.X, obs.EyesCenter.Y,
	})
	return t.observationFrom(smoothed, obs)
}

// Smoothed returns the current smoothed observation without inserting a new
// sample, or nil when the track is empty.
func (t *Tracker) Smoothed() *FaceObservation {
	last := t.smoother.Last()
	if last == nil || t.lastObs == nil {
		return nil
	}
	return t.observationFrom(last, t.lastObs)
}

// Reset clears the track. Used when a new video begins.
func (t *Tracker) Reset() {
	t.smoother.Reset()
	t.missed = 0
	t.lastObs = nil
}

func (t *Tracker) handleMiss() *FaceObservation {
	if t.smoother.Last() == nil {
		return nil
	}

	t.missed++
	if t.missed > maxMissingFrames {
		log.Printf("[TRACKER] Lost track after %d missed frames", t.missed)
		t.Reset()
		return nil
	}

	// Continuity over interruption: hold the last smoothed position
	return t.Smoothed()
}

func (t *Tracker) isSpatiallyConsistent(obs *FaceObservation) bool {
	last := t.smoother.Last()
	if last == nil {
		return true
	}
	return distance(obs.Center(), Point{X: last[0], Y: last[1]}) <= maxSpatialJump
}

func (t *Tracker) observationFrom(v []float64, raw *FaceObservation) *FaceObservation {
	return &FaceObservation{
		X:          v[0] - v[2]/2,
		Y:          v[1] - v[3]/2,
		Width:      v[2],
		Height:     v[3],
		Angle:      v[4],
		EyesCenter: Point{X: v[5], Y: v[6]},
		Confidence: raw.Confidence,
		Landmarks:  raw.Landmarks, // keep the latest raw landmarks for reference
	}
}
