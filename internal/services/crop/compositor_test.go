package crop

import (
	"math"
	"testing"

	"smart-cropper/internal/services/face"
)

func testCompositor() *Compositor {
	return &Compositor{
		TargetAspect:     9.0 / 16.0,
		HorizontalMargin: 1.5,
		VerticalMargin:   2.0,
		MinCropWidth:     480,
		MaxZoom:          2.0,
		FaceVerticalPos:  0.35,
	}
}

func faceObs(cx, cy, w, h float64) *face.FaceObservation {
	return &face.FaceObservation{
		X:      cx - w/2,
		Y:      cy - h/2,
		Width:  w,
		Height: h,
	}
}

func assertInFrame(t *testing.T, r Rect, frameW, frameH int) {
	t.Helper()
	if r.X < 0 || r.Y < 0 || r.X+r.Width > frameW || r.Y+r.Height > frameH {
		t.Errorf("crop escapes the frame: %+v in %dx%d", r, frameW, frameH)
	}
	if r.Width <= 0 || r.Height <= 0 {
		t.Errorf("degenerate crop: %+v", r)
	}
}

func assertAspect(t *testing.T, r Rect, want float64) {
	t.Helper()
	got := float64(r.Width) / float64(r.Height)
	// Integer rounding makes the ratio slightly off
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("aspect ratio %v, want %v (crop %+v)", got, want, r)
	}
}

func TestCenterCrop(t *testing.T) {
	c := testCompositor()
	r := c.CenterCrop(1920, 1080)

	assertInFrame(t, r, 1920, 1080)
	assertAspect(t, r, 9.0/16.0)
	if r.Height != 1080 {
		t.Errorf("center crop should use the full height, got %d", r.Height)
	}
	if r.X != (1920-r.Width)/2 {
		t.Errorf("center crop not centered: %+v", r)
	}
}

func TestComposeNilFaceFallsBackToCenter(t *testing.T) {
	c := testCompositor()
	if got, want := c.Compose(nil, 1920, 1080), c.CenterCrop(1920, 1080); got != want {
		t.Errorf("nil face: got %+v, want %+v", got, want)
	}
}

func TestComposeCenteredFace(t *testing.T) {
	c := testCompositor()
	r := c.Compose(faceObs(0.5, 0.5, 0.2, 0.3), 1920, 1080)

	assertInFrame(t, r, 1920, 1080)
	assertAspect(t, r, 9.0/16.0)

	// The face center should sit near the crop's horizontal middle
	faceX := int(0.5 * 1920)
	cropCenterX := r.X + r.Width/2
	if abs := faceX - cropCenterX; abs > 2 || abs < -2 {
		t.Errorf("face not horizontally centered: face at %d, crop center %d", faceX, cropCenterX)
	}
}

func TestComposeMinZoomBound(t *testing.T) {
	c := testCompositor()
	// A tiny face must not produce an extreme close-up
	r := c.Compose(faceObs(0.5, 0.5, 0.05, 0.05), 1920, 1080)

	assertInFrame(t, r, 1920, 1080)
	if r.Width < 480 {
		t.Errorf("crop narrower than the minimum: %d", r.Width)
	}
}

func TestComposeMaxZoomBound(t *testing.T) {
	c := testCompositor()
	// A huge face must not widen the crop past frameWidth / MaxZoom
	r := c.Compose(faceObs(0.5, 0.5, 0.9, 0.5), 1920, 1080)

	assertInFrame(t, r, 1920, 1080)
	if r.Width > 960 {
		t.Errorf("crop wider than frameWidth/MaxZoom: %d", r.Width)
	}
}

func TestComposeEdgeFaceStaysInFrame(t *testing.T) {
	c := testCompositor()
	corners := []struct{ cx, cy float64 }{
		{0.02, 0.02}, {0.98, 0.02}, {0.02, 0.98}, {0.98, 0.98},
	}
	for _, pos := range corners {
		r := c.Compose(faceObs(pos.cx, pos.cy, 0.2, 0.3), 1920, 1080)
		assertInFrame(t, r, 1920, 1080)
	}
}

func TestComposeVerticalPlacement(t *testing.T) {
	c := testCompositor()
	// High enough in the frame that the vertical placement is not clamped
	r := c.Compose(faceObs(0.5, 0.38, 0.2, 0.3), 1920, 1080)

	assertInFrame(t, r, 1920, 1080)
	faceCY := 0.38 * 1080.0
	faceY := int(faceCY)
	wantOffset := int(float64(r.Height) * 0.35)
	if got := faceY - r.Y; got < wantOffset-2 || got > wantOffset+2 {
		t.Errorf("face sits %dpx into the crop, want ~%d", got, wantOffset)
	}
}

func TestComposeAnchorPrefersEyes(t *testing.T) {
	c := testCompositor()
	obs := faceObs(0.5, 0.5, 0.2, 0.3)
	obs.EyesCenter = face.Point{X: 0.4, Y: 0.45}

	r := c.Compose(obs, 1920, 1080)
	eyesX := int(0.4 * 1920)
	cropCenterX := r.X + r.Width/2
	if abs := eyesX - cropCenterX; abs > 2 || abs < -2 {
		t.Errorf("eyes not horizontally centered: eyes at %d, crop center %d", eyesX, cropCenterX)
	}
}
