package face

// Point is a 2D point in normalized image coordinates (0-1).
type Point struct {
	X float64
	Y float64
}

// FaceObservation represents one detected face in one frame. Coordinates are
// normalized to the frame (0-1). A frame with no detection is represented by
// the absence of an observation, never by a zero-size box.
type FaceObservation struct {
	X          float64 // bounding box left
	Y          float64 // bounding box top
	Width      float64 // bounding box width
	Height     float64 // bounding box height
	Confidence float64 // detection confidence

	EyesCenter Point   // midpoint between the two eye centroids
	Angle      float64 // face rotation in degrees (eye-line vs horizontal)

	// Landmarks holds the raw landmark point set for this frame. It is nil for
	// bbox-only detections (e.g. the pigo fallback) — downstream lip-sync
	// treats a nil set as a closed mouth.
	Landmarks []Point
}

// Center returns the bounding box center.
func (o *FaceObservation) Center() Point {
	return Point{
		X: o.X + o.Width/2,
		Y: o.Y + o.Height/2,
	}
}

// Anchor returns the preferred framing anchor: the smoothed eyes center when
// landmarks were available, otherwise the bounding box center.
func (o *FaceObservation) Anchor() Point {
	if o.EyesCenter.X != 0 || o.EyesCenter.Y != 0 {
		return o.EyesCenter
	}
	return o.Center()
}
