package face

import (
	"math"
)

// Landmark indices from the MediaPipe face mesh (468 points).
var (
	faceOvalIndices = []int{10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
		397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
		172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109}
	leftEyeIndices  = []int{33, 160, 158, 133, 153, 144}
	rightEyeIndices = []int{362, 385, 387, 263, 373, 380}
)

const (
	noseTipIndex = 1
	chinIndex    = 152

	// Inner lip centers and mouth corners, used for mouth-opening measurement.
	MouthTopIndex    = 13
	MouthBottomIndex = 14
	MouthLeftIndex   = 61
	MouthRightIndex  = 291

	// minLandmarkCount is the size of a full face mesh. Smaller point sets
	// cannot be normalized and are treated as no observation.
	minLandmarkCount = 468
)

// Normalize converts a raw landmark point set into a canonical FaceObservation:
// bounding box from the face-oval subset, eyes center from the eye point
// clouds, rotation angle from the eye-to-eye vector. Returns nil when the
// point set is missing or too small, so callers fall back to the last known
// position instead of a degenerate box.
func Normalize(points []Point) *FaceObservation {
	if len(points) < minLandmarkCount {
		return nil
	}

	leftEye := centroid(points, leftEyeIndices)
	rightEye := centroid(points, rightEyeIndices)
	eyesCenter := Point{
		X: (leftEye.X + rightEye.X) / 2,
		Y: (leftEye.Y + rightEye.Y) / 2,
	}

	// Rotation angle from the vector between the eye centroids
	angle := math.Atan2(rightEye.Y-leftEye.Y, rightEye.X-leftEye.X) * 180 / math.Pi

	// Tight axis-aligned bounding box from the face oval
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, idx := range faceOvalIndices {
		p := points[idx]
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	minX = clamp01(minX)
	minY = clamp01(minY)
	maxX = clamp01(maxX)
	maxY = clamp01(maxY)

	return &FaceObservation{
		X:          minX,
		Y:          minY,
		Width:      maxX - minX,
		Height:     maxY - minY,
		Confidence: 1.0, // the landmarker does not report a per-face score
		EyesCenter: eyesCenter,
		Angle:      angle,
		Landmarks:  points,
	}
}

func centroid(points []Point, indices []int) Point {
	var sx, sy float64
	for _, idx := range indices {
		sx += points[idx].X
		sy += points[idx].Y
	}
	n := float64(len(indices))
	return Point{X: sx / n, Y: sy / n}
}
