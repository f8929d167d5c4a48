package face

import (
	"log"
)

// Detector yields per-frame face observations from a packed RGB frame buffer.
// Timestamps must be strictly increasing per video — a contract inherited
// from the video-mode landmark model behind the sidecar.
type Detector interface {
	Detect(rgb []byte, width, height int, timestampMS int64) ([]FaceObservation, error)
}

// LandmarkDetector detects faces through the landmarker sidecar and
// normalizes each raw point set into a FaceObservation.
type LandmarkDetector struct {
	client *LandmarkClient
}

func NewLandmarkDetector(client *LandmarkClient) *LandmarkDetector {
	return &LandmarkDetector{client: client}
}

func (d *LandmarkDetector) Detect(rgb []byte, width, height int, timestampMS int64) ([]FaceObservation, error) {
	pointSets, err := d.client.Detect(rgb, width, height, timestampMS)
	if err != nil {
		return nil, err
	}

	var observations []FaceObservation
	for _, points := range pointSets {
		if obs := Normalize(points); obs != nil {
			observations = append(observations, *obs)
		}
	}
	return observations, nil
}

// PigoDetector is the pure-Go fallback when the sidecar is unavailable.
type PigoDetector struct{}

func (d *PigoDetector) Detect(rgb []byte, width, height int, _ int64) ([]FaceObservation, error) {
	return PigoDetect(rgb, width, height)
}

// ChainDetector tries the primary detector and falls back on error. A failed
// frame is non-fatal: the caller sees whatever the fallback produced, possibly
// nothing, and the temporal trackers absorb the gap.
type ChainDetector struct {
	primary  Detector
	fallback Detector
	degraded bool
}

func NewChainDetector(primary, fallback Detector) *ChainDetector {
	return &ChainDetector{primary: primary, fallback: fallback}
}

func (d *ChainDetector) Detect(rgb []byte, width, height int, timestampMS int64) ([]FaceObservation, error) {
	observations, err := d.primary.Detect(rgb, width, height, timestampMS)
	if err == nil {
		d.degraded = false
		return observations, nil
	}

	if !d.degraded {
		log.Printf("[DETECTOR] Primary detector failed, falling back: %v", err)
		d.degraded = true
	}

	if d.fallback == nil {
		return nil, nil
	}
	observations, err = d.fallback.Detect(rgb, width, height, timestampMS)
	if err != nil {
		// Missing detection is non-fatal, the trackers carry forward
		return nil, nil
	}
	return observations, nil
}
