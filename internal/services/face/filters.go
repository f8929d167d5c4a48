package face

import (
	"log"
)

const (
	// Size constraints (relative to frame height)
	minFaceHeightRatio = 0.05 // Minimum 5% of frame height
	maxFaceHeightRatio = 0.90 // Maximum 90% of frame height

	// Aspect ratio constraints
	minFaceAspectRatio = 0.4
	maxFaceAspectRatio = 1.6

	// Landmark validation thresholds
	minEyeDistanceRatio = 0.2 // Eye distance vs face width
)

// FilterObservations removes likely false positives before tracking. Mostly
// relevant for the pigo fallback, which trades precision for availability.
func FilterObservations(observations []FaceObservation) []FaceObservation {
	filtered := make([]FaceObservation, 0, len(observations))

	for _, obs := range observations {
		if !filterBySize(obs) {
			log.Printf("[FILTER] Rejected by size: %.3fx%.3f", obs.Width, obs.Height)
			continue
		}
		if !filterByAspectRatio(obs) {
			log.Printf("[FILTER] Rejected by aspect ratio: %.2f", obs.Width/obs.Height)
			continue
		}
		if !filterByLandmarks(obs) {
			log.Printf("[FILTER] Rejected by landmark geometry")
			continue
		}
		filtered = append(filtered, obs)
	}

	return filtered
}

func filterBySize(obs FaceObservation) bool {
	return obs.Height >= minFaceHeightRatio && obs.Height <= maxFaceHeightRatio
}

func filterByAspectRatio(obs FaceObservation) bool {
	if obs.Height == 0 {
		return false
	}
	ratio := obs.Width / obs.Height
	return ratio >= minFaceAspectRatio && ratio <= maxFaceAspectRatio
}

func filterByLandmarks(obs FaceObservation) bool {
	// bbox-only detections have nothing to validate
	if len(obs.Landmarks) < minLandmarkCount {
		return true
	}

	leftEye := centroid(obs.Landmarks, leftEyeIndices)
	rightEye := centroid(obs.Landmarks, rightEyeIndices)

	// Eye distance should be a reasonable fraction of face width
	return distance(leftEye, rightEye) >= obs.Width*minEyeDistanceRatio
}
