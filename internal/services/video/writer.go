package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Writer encodes output frames at a fixed size. All frames written must
// match the configured dimensions.
type Writer struct {
	writer *gocv.VideoWriter
	width  int
	height int
}

// NewWriter creates an mp4 writer for the given output geometry.
func NewWriter(path string, fps float64, width, height int) (*Writer, error) {
	w, err := gocv.VideoWriterFile(path, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open video writer %s: %w", path, err)
	}
	return &Writer{writer: w, width: width, height: height}, nil
}

// Write encodes one frame.
func (w *Writer) Write(mat gocv.Mat) error {
	if mat.Cols() != w.width || mat.Rows() != w.height {
		return fmt.Errorf("frame size %dx%d does not match writer %dx%d",
			mat.Cols(), mat.Rows(), w.width, w.height)
	}
	return w.writer.Write(mat)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
