package face

import (
	"math"
)

const (
	// Scoring weights
	sizeWeight       = 0.4 // face size
	positionWeight   = 0.3 // center position
	confidenceWeight = 0.2 // detection confidence
	verticalWeight   = 0.1 // vertical position bias
)

// SelectPrimary picks the most prominent face from multiple candidates.
// Used as the framing fallback when arbitration has no active speaker yet.
// Returns -1 when there are no candidates.
func SelectPrimary(candidates []FaceObservation) int {
	if len(candidates) == 0 {
		return -1
	}
	if len(candidates) == 1 {
		return 0
	}

	bestIdx := 0
	bestScore := ScoreObservation(candidates[0])
	for i := 1; i < len(candidates); i++ {
		if score := ScoreObservation(candidates[i]); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// ScoreObservation computes a weighted prominence score in normalized
// coordinates: larger, more central, more confident faces score higher, with
// a penalty for faces in the lower third of the frame.
func ScoreObservation(obs FaceObservation) float64 {
	sizeScore := obs.Width * obs.Height

	center := obs.Center()
	distFromCenter := distance(center, Point{X: 0.5, Y: 0.5})
	positionScore := 1.0 - distFromCenter/math.Sqrt2*2

	verticalBias := 1.0
	if center.Y > 0.66 {
		verticalBias = 0.7
	}

	return sizeScore*sizeWeight +
		positionScore*positionWeight +
		obs.Confidence*confidenceWeight +
		verticalBias*verticalWeight
}
