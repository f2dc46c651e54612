package viewvk

import (
	"testing"
)

func TestRenderOverlayPixels(t *testing.T) {
	width, height := 640, 480
	pixels := renderOverlayPixels(width, height)
	if len(pixels) != width*height*4 {
		t.Fatalf("overlay buffer %d bytes, want %d", len(pixels), width*height*4)
	}

	//Corner pixel carries the background color, no text reaches the edges
	if pixels[0] != overlay_background.R || pixels[1] != overlay_background.G ||
		pixels[2] != overlay_background.B || pixels[3] != overlay_background.A {
		t.Errorf("corner pixel = (%d,%d,%d,%d)", pixels[0], pixels[1], pixels[2], pixels[3])
	}

	//Some pixel must differ from the background, otherwise no text rendered
	found := false
	for i := 0; i < len(pixels); i += 4 {
		if pixels[i] != overlay_background.R || pixels[i+1] != overlay_background.G ||
			pixels[i+2] != overlay_background.B {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("overlay contains no text pixels")
	}

	if got := renderOverlayPixels(0, 480); got != nil {
		t.Errorf("zero width produced %d bytes", len(got))
	}
}
