package crop

import (
	"smart-cropper/internal/services/face"
)

// Rect is a pixel-space crop rectangle. Both the instantaneous and the
// temporally smoothed rectangle use this type at different pipeline stages.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Compositor maps the active speaker's smoothed geometry into a crop
// rectangle satisfying the aspect-ratio, margin, zoom and frame-bounds
// constraints.
type Compositor struct {
	TargetAspect     float64 // width / height, e.g. 9.0/16.0
	HorizontalMargin float64 // multiplier for face width
	VerticalMargin   float64 // multiplier for face height
	MinCropWidth     int     // lower zoom bound (source pixels)
	MaxZoom          float64 // crop width is at least frameWidth / MaxZoom
	FaceVerticalPos  float64 // anchor position down from the crop's top
}

// CenterCrop returns the maximal crop of the target aspect ratio that fits
// the source frame, centered. Used whenever there is no face to follow.
func (c *Compositor) CenterCrop(frameWidth, frameHeight int) Rect {
	cropHeight := frameHeight
	cropWidth := int(float64(cropHeight) * c.TargetAspect)
	if cropWidth > frameWidth {
		cropWidth = frameWidth
		cropHeight = int(float64(cropWidth) / c.TargetAspect)
	}
	return Rect{
		X:      (frameWidth - cropWidth) / 2,
		Y:      (frameHeight - cropHeight) / 2,
		Width:  cropWidth,
		Height: cropHeight,
	}
}

// Compose computes the crop rectangle for the given smoothed face geometry.
// A nil face falls back to the centered default crop.
func (c *Compositor) Compose(obs *face.FaceObservation, frameWidth, frameHeight int) Rect {
	if obs == nil {
		return c.CenterCrop(frameWidth, frameHeight)
	}

	// Eyes center anchors the framing when landmarks were available,
	// otherwise the bounding box center
	anchor := obs.Anchor()
	faceX := int(anchor.X * float64(frameWidth))
	faceY := int(anchor.Y * float64(frameHeight))
	faceW := int(obs.Width * float64(frameWidth) * c.HorizontalMargin)
	faceH := int(obs.Height * float64(frameHeight) * c.VerticalMargin)

	// Reconcile the margin-expanded box to the target aspect ratio
	cropWidth := faceW
	if aspectWidth := int(float64(faceH) * c.TargetAspect); aspectWidth > cropWidth {
		cropWidth = aspectWidth
	}
	cropHeight := int(float64(cropWidth) / c.TargetAspect)

	// Zoom bounds: never tighter than MinCropWidth, never wider than
	// frameWidth / MaxZoom
	if cropWidth < c.MinCropWidth {
		cropWidth = c.MinCropWidth
		cropHeight = int(float64(cropWidth) / c.TargetAspect)
	}
	maxCropWidth := int(float64(frameWidth) / c.MaxZoom)
	if cropWidth > maxCropWidth {
		cropWidth = maxCropWidth
		cropHeight = int(float64(cropWidth) / c.TargetAspect)
	}

	// Center horizontally on the anchor; place the anchor at
	// FaceVerticalPos down from the crop's top
	cropX := faceX - cropWidth/2
	cropY := faceY - int(float64(cropHeight)*c.FaceVerticalPos)

	// Keep the origin inside the frame
	cropX = clampInt(cropX, 0, frameWidth-cropWidth)
	cropY = clampInt(cropY, 0, frameHeight-cropHeight)

	// Shrink to fit when the size itself exceeds the frame, preserving
	// the aspect ratio
	if cropX+cropWidth > frameWidth {
		cropWidth = frameWidth - cropX
		cropHeight = int(float64(cropWidth) / c.TargetAspect)
	}
	if cropY+cropHeight > frameHeight {
		cropHeight = frameHeight - cropY
		cropWidth = int(float64(cropHeight) * c.TargetAspect)
	}

	return Rect{X: cropX, Y: cropY, Width: cropWidth, Height: cropHeight}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
