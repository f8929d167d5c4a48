// Package video drives the frame loop: decode source frames, run the crop
// decision, and encode the vertical output.
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Reader wraps a video capture with the probed stream properties.
type Reader struct {
	cap *gocv.VideoCapture

	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// OpenReader opens the video file and probes its dimensions, frame rate and
// frame count. A stream reporting zero dimensions is rejected.
func OpenReader(path string) (*Reader, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}

	r := &Reader{
		cap:        vc,
		Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        vc.Get(gocv.VideoCaptureFPS),
		FrameCount: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}

	if r.Width <= 0 || r.Height <= 0 {
		vc.Close()
		return nil, fmt.Errorf("video %s reports invalid dimensions %dx%d", path, r.Width, r.Height)
	}
	if r.FPS <= 0 {
		r.FPS = 30
	}

	return r, nil
}

// Read decodes the next frame into mat. Returns false at end of stream.
func (r *Reader) Read(mat *gocv.Mat) bool {
	return r.cap.Read(mat) && !mat.Empty()
}

// Duration returns the stream length in seconds.
func (r *Reader) Duration() float64 {
	return float64(r.FrameCount) / r.FPS
}

func (r *Reader) Close() error {
	return r.cap.Close()
}
