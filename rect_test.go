package viewvk

import (
	"math"
	"testing"
)

func TestSanitizeZoom(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.0, 1.0},
		{0.5, 0.5},
		{8.0, 8.0},
		{math.NaN(), 1.0},
		{math.Inf(1), 1.0},
		{math.Inf(-1), 1.0},
		{0.0005, 1.0},
		{11.0, 1.0},
		{-3.0, 1.0},
		{0.001, 0.001},
		{10.0, 10.0},
	}
	for _, c := range cases {
		got := sanitizeZoom(c.in)
		if got != c.want {
			t.Errorf("sanitizeZoom(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRotatedDims(t *testing.T) {
	w, h := rotatedDims(400, 300, 0)
	if w != 400 || h != 300 {
		t.Errorf("rotation 0 changed dims to %dx%d", w, h)
	}
	w, h = rotatedDims(400, 300, 90)
	if w != 300 || h != 400 {
		t.Errorf("rotation 90 gave %dx%d, want 300x400", w, h)
	}
	w, h = rotatedDims(400, 300, 270)
	if w != 300 || h != 400 {
		t.Errorf("rotation 270 gave %dx%d, want 300x400", w, h)
	}
	w, h = rotatedDims(400, 300, 180)
	if w != 400 || h != 300 {
		t.Errorf("rotation 180 gave %dx%d, want 400x300", w, h)
	}
	w, h = rotatedDims(400, 300, -90)
	if w != 300 || h != 400 {
		t.Errorf("rotation -90 gave %dx%d, want 300x400", w, h)
	}
}

func TestComputeBlitRectCentered(t *testing.T) {
	rect, ok := computeBlitRect(800, 600, 400, 300, 1.0, 0, 0, 0)
	if !ok {
		t.Fatalf("rectangle math failed for plain input")
	}
	//400x300 fits 800x600 at scale 2, filling the surface
	if rect.x0 != 0 || rect.y0 != 0 || rect.x1 != 800 || rect.y1 != 600 {
		t.Errorf("unexpected rect %+v", rect)
	}
}

func TestComputeBlitRectPathological(t *testing.T) {
	//Enormous zoom with large offsets used to overflow the blit offsets
	rect, ok := computeBlitRect(800, 600, 4000, 3000, 1e9, 1e8, 1e8, 0)
	if ok {
		clamped := clampBlitRect(rect, 800, 600)
		if clamped.x1 <= clamped.x0 || clamped.y1 <= clamped.y0 {
			t.Errorf("clamp left degenerate rect %+v", clamped)
		}
		if clamped.x0 < 0 || clamped.y0 < 0 || clamped.x1 > 800 || clamped.y1 > 600 {
			t.Errorf("clamp left out-of-surface rect %+v", clamped)
		}
	}

	if _, ok := computeBlitRect(800, 600, 400, 300, math.NaN(), 0, 0, 0); ok {
		t.Errorf("NaN zoom accepted")
	}
	if _, ok := computeBlitRect(800, 600, 0, 0, 1.0, 0, 0, 0); ok {
		t.Errorf("zero image dims accepted")
	}
}

func TestClampBlitRectDegenerate(t *testing.T) {
	//Entirely off-surface rectangle must repair to a valid one pixel rect
	rect := clampBlitRect(blitRect{x0: 900, y0: 700, x1: 950, y1: 750}, 800, 600)
	if rect.x1 <= rect.x0 || rect.y1 <= rect.y0 {
		t.Errorf("degenerate rect survived clamp: %+v", rect)
	}
	if rect.x1 > 800 || rect.y1 > 600 {
		t.Errorf("clamped rect exceeds surface: %+v", rect)
	}

	rect = clampBlitRect(blitRect{x0: -100, y0: -100, x1: -50, y1: -50}, 800, 600)
	if rect.x1 <= rect.x0 || rect.y1 <= rect.y0 {
		t.Errorf("negative rect survived clamp: %+v", rect)
	}
}

func TestCenterPixelRect(t *testing.T) {
	rect := centerPixelRect(800, 600)
	if rect.x1-rect.x0 != 1 || rect.y1-rect.y0 != 1 {
		t.Errorf("center rect not one pixel: %+v", rect)
	}
	if rect.x0 != 400 || rect.y0 != 300 {
		t.Errorf("center rect off center: %+v", rect)
	}
}

func TestDynamicZoomCap(t *testing.T) {
	cfg := DefaultConfig()

	//Small image never hits the viewport wall, cap is the configured max
	if got := dynamicZoomCap(400, 300, 0, cfg, cfg.StateHeadroom); got != cfg.MaxZoom {
		t.Errorf("small image capped at %v, want %v", got, cfg.MaxZoom)
	}

	//8192 wide image at zoom 1 already fills the safe viewport, so the cap
	//must drop below 1 with headroom applied
	got := dynamicZoomCap(8192, 8192, 0, cfg, cfg.StateHeadroom)
	if got >= 1.0 {
		t.Errorf("huge image cap %v, want below 1.0", got)
	}
	if got < cfg.MinZoom {
		t.Errorf("cap %v fell below minimum zoom", got)
	}

	//Rotation swaps the axes before the cap is computed
	portrait := dynamicZoomCap(4096, 16384, 90, cfg, cfg.RenderHeadroom)
	landscape := dynamicZoomCap(16384, 4096, 0, cfg, cfg.RenderHeadroom)
	if portrait != landscape {
		t.Errorf("rotated cap %v differs from swapped-dims cap %v", portrait, landscape)
	}

	//Render-time headroom is tighter than state-time headroom
	state := dynamicZoomCap(8192, 8192, 0, cfg, cfg.StateHeadroom)
	render := dynamicZoomCap(8192, 8192, 0, cfg, cfg.RenderHeadroom)
	if render >= state {
		t.Errorf("render cap %v not tighter than state cap %v", render, state)
	}
}

func TestFitScale(t *testing.T) {
	if got := fitScale(800, 600, 400, 300, 1.0); got != 2.0 {
		t.Errorf("fitScale = %v, want 2.0", got)
	}
	if got := fitScale(800, 600, 0, 300, 1.0); got != 0 {
		t.Errorf("zero width image gave scale %v", got)
	}
}
