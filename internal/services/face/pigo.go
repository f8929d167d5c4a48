package face

import (
	"fmt"
	"log"
	"os"

	pigo "github.com/esimov/pigo/core"
)

var (
	classifier  *pigo.Pigo
	cascadeFile []byte
)

const (
	// Pigo detection parameters
	minSize          = 20   // Minimum face size (pixels)
	maxSize          = 1000 // Maximum face size (pixels)
	shiftFactor      = 0.1  // Shift factor for detection window
	scaleFactor      = 1.1  // Scale factor for image pyramid
	iouThreshold     = 0.2  // IoU threshold for NMS
	qualityThreshold = 5.0  // Minimum quality score
)

// InitPigo initializes the Pigo face detector
func InitPigo(cascadePath string) error {
	var err error
	cascadeFile, err = os.ReadFile(cascadePath)
	if err != nil {
		return fmt.Errorf("failed to read cascade file: %w", err)
	}

	p := pigo.NewPigo()
	classifier, err = p.Unpack(cascadeFile)
	if err != nil {
		return fmt.Errorf("failed to unpack cascade: %w", err)
	}

	log.Printf("Pigo face detector initialized (minSize: %d, qualityThreshold: %.1f)", minSize, qualityThreshold)
	return nil
}

// Cleanup releases Pigo resources
func Cleanup() {
	classifier = nil
	cascadeFile = nil
}

// PigoDetect runs pure-Go face detection on an RGB frame buffer. Detections
// are returned as bbox-only observations in normalized coordinates: pigo
// yields no landmarks, so EyesCenter is left at the box center fallback and
// mouth opening downstream reads as zero.
func PigoDetect(rgb []byte, width, height int) ([]FaceObservation, error) {
	if classifier == nil {
		return nil, fmt.Errorf("pigo face detection not initialized")
	}

	gray := rgbToGrayscale(rgb, width, height)

	cParams := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     maxSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}

	// 0.0 = detect all, filter by quality afterwards
	dets := classifier.RunCascade(cParams, 0.0)
	dets = classifier.ClusterDetections(dets, iouThreshold)

	var observations []FaceObservation
	for _, det := range dets {
		if det.Q < qualityThreshold {
			continue
		}

		// Pigo returns center (Row, Col) and Scale (radius)
		size := float64(det.Scale) * 2
		obs := FaceObservation{
			X:          clamp01((float64(det.Col) - float64(det.Scale)) / float64(width)),
			Y:          clamp01((float64(det.Row) - float64(det.Scale)) / float64(height)),
			Width:      size / float64(width),
			Height:     size / float64(height),
			Confidence: float64(det.Q) / 100.0,
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// rgbToGrayscale converts a packed RGB buffer to a grayscale pixel array
func rgbToGrayscale(rgb []byte, width, height int) []uint8 {
	gray := make([]uint8, width*height)
	for i := 0; i < width*height && i*3+2 < len(rgb); i++ {
		r := uint32(rgb[i*3])
		g := uint32(rgb[i*3+1])
		b := uint32(rgb[i*3+2])
		gray[i] = uint8((r*299 + g*587 + b*114) / 1000)
	}
	return gray
}
