package face

import (
	"math"
	"testing"
)

// syntheticMesh builds a full 468-point set with the eyes and face oval
// placed at known positions (normalized coordinates).
func syntheticMesh(eyeY float64) []Point {
	points := make([]Point, minLandmarkCount)
	for i := range points {
		points[i] = Point{X: 0.5, Y: 0.5}
	}

	for _, idx := range leftEyeIndices {
		points[idx] = Point{X: 0.4, Y: eyeY}
	}
	for _, idx := range rightEyeIndices {
		points[idx] = Point{X: 0.6, Y: eyeY}
	}

	// Oval corners pinned so the bounding box is exactly [0.3,0.3]-[0.7,0.8]
	points[faceOvalIndices[0]] = Point{X: 0.3, Y: 0.3}
	points[faceOvalIndices[1]] = Point{X: 0.7, Y: 0.8}

	return points
}

func TestNormalizeBoundingBox(t *testing.T) {
	obs := Normalize(syntheticMesh(0.4))
	if obs == nil {
		t.Fatal("full mesh must normalize")
	}

	if math.Abs(obs.X-0.3) > 1e-9 || math.Abs(obs.Y-0.3) > 1e-9 {
		t.Errorf("bbox origin: got (%v, %v)", obs.X, obs.Y)
	}
	if math.Abs(obs.Width-0.4) > 1e-9 || math.Abs(obs.Height-0.5) > 1e-9 {
		t.Errorf("bbox size: got (%v, %v)", obs.Width, obs.Height)
	}
}

func TestNormalizeEyesCenterAndAngle(t *testing.T) {
	obs := Normalize(syntheticMesh(0.4))

	if math.Abs(obs.EyesCenter.X-0.5) > 1e-9 || math.Abs(obs.EyesCenter.Y-0.4) > 1e-9 {
		t.Errorf("eyes center: got %+v", obs.EyesCenter)
	}
	if math.Abs(obs.Angle) > 1e-9 {
		t.Errorf("level eyes should give zero angle, got %v", obs.Angle)
	}
}

func TestNormalizeTiltedFace(t *testing.T) {
	points := syntheticMesh(0.4)
	// Drop the right eye: a positive angle means the head tilts clockwise
	for _, idx := range rightEyeIndices {
		points[idx].Y = 0.6
	}

	obs := Normalize(points)
	want := math.Atan2(0.2, 0.2) * 180 / math.Pi
	if math.Abs(obs.Angle-want) > 1e-6 {
		t.Errorf("angle: got %v, want %v", obs.Angle, want)
	}
}

func TestNormalizeClampsToFrame(t *testing.T) {
	points := syntheticMesh(0.4)
	points[faceOvalIndices[0]] = Point{X: -0.2, Y: -0.1}
	points[faceOvalIndices[1]] = Point{X: 1.3, Y: 1.2}

	obs := Normalize(points)
	if obs.X < 0 || obs.Y < 0 || obs.X+obs.Width > 1 || obs.Y+obs.Height > 1 {
		t.Errorf("bbox escapes the frame: %+v", obs)
	}
}

func TestNormalizeShortPointSet(t *testing.T) {
	if obs := Normalize(make([]Point, 100)); obs != nil {
		t.Errorf("short point set must not normalize, got %+v", obs)
	}
	if obs := Normalize(nil); obs != nil {
		t.Errorf("nil point set must not normalize, got %+v", obs)
	}
}
