package viewvk

import (
	"testing"
)

func TestSoftwareFallback(t *testing.T) {
	fallback := newSoftwareFallback(0, 0)
	if fallback.width != fallback_default_width || fallback.height != fallback_default_height {
		t.Errorf("defaults not applied: %dx%d", fallback.width, fallback.height)
	}

	fallback.render(320, 240)
	if fallback.width != 320 || fallback.height != 240 {
		t.Errorf("resize ignored: %dx%d", fallback.width, fallback.height)
	}
	if len(fallback.buffer) != 320*240*4 {
		t.Fatalf("buffer %d bytes", len(fallback.buffer))
	}
	for index := 0; index < len(fallback.buffer); index += 4 {
		if fallback.buffer[index] != fallback_gray || fallback.buffer[index+3] != 0xff {
			t.Fatalf("pixel %d = (%d,%d)", index/4, fallback.buffer[index], fallback.buffer[index+3])
		}
	}

	//Same size keeps the allocation
	before := &fallback.buffer[0]
	fallback.render(320, 240)
	if before != &fallback.buffer[0] {
		t.Errorf("same-size render reallocated the buffer")
	}

	//Zero dims are a no-op, not a crash
	fallback.render(0, 240)
	if fallback.width != 320 {
		t.Errorf("zero width resized the buffer")
	}
}
