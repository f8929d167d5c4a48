package video

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"smart-cropper/internal/services/crop"
)

// Annotator saves periodic debug frames with the crop decision drawn on top.
type Annotator struct {
	dir   string
	every int
}

// NewAnnotator writes an annotated frame every `every` frames into dir.
func NewAnnotator(dir string, every int) (*Annotator, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create annotation directory: %w", err)
	}
	return &Annotator{dir: dir, every: every}, nil
}

// MaybeSave draws the decision overlay and writes the frame if it falls on
// the sampling interval. Failures only log; annotation never breaks a job.
func (a *Annotator) MaybeSave(frame gocv.Mat, info crop.DebugInfo, frameIdx int) {
	if frameIdx%a.every != 0 {
		return
	}

	annotated := frame.Clone()
	defer annotated.Close()

	// Green crop rectangle, label bar with the decision state
	r := info.CropRect
	gocv.Rectangle(&annotated,
		image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height),
		color.RGBA{0, 255, 0, 255}, 3)

	label := fmt.Sprintf("faces=%d speaker=%d energy=%.3f", info.NumFaces, info.ActiveSpeaker, info.AudioEnergy)
	gocv.PutText(&annotated, label, image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.8, color.RGBA{255, 255, 0, 255}, 2)

	path := filepath.Join(a.dir, fmt.Sprintf("frame_%06d.jpg", frameIdx))
	if ok := gocv.IMWrite(path, annotated); !ok {
		log.Printf("[DEBUG] Failed to save annotated frame %s", path)
	}
}
