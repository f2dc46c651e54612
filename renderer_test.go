package viewvk

import (
	"testing"
)

func TestHeadlessInitialize(t *testing.T) {
	renderer := NewRenderer(nil)
	if !renderer.Initialize(nil) {
		t.Fatalf("headless initialization failed")
	}
	if renderer.IsVulkanAvailable() {
		t.Errorf("headless renderer claims vulkan available")
	}
	if renderer.IsDeviceLost() {
		t.Errorf("headless renderer starts lost")
	}
	if renderer.IsSwapchainOutOfDate() {
		t.Errorf("headless renderer starts stale")
	}
	if renderer.IsReady() {
		t.Errorf("headless renderer claims GPU readiness")
	}

	buffer, width, height := renderer.FallbackFramebuffer()
	if buffer == nil || width <= 0 || height <= 0 {
		t.Fatalf("fallback framebuffer not armed: %d bytes %dx%d", len(buffer), width, height)
	}
	if len(buffer) != width*height*4 {
		t.Errorf("fallback buffer %d bytes for %dx%d", len(buffer), width, height)
	}

	renderer.Shutdown()
}

func TestHeadlessRenderRoutesToFallback(t *testing.T) {
	renderer := NewRenderer(nil)
	renderer.Initialize(nil)
	defer renderer.Shutdown()

	renderer.Render(640, 480, 1.0, 0.0, 0.0, 0)

	buffer, width, height := renderer.FallbackFramebuffer()
	if width != 640 || height != 480 {
		t.Fatalf("fallback did not resize to the render target: %dx%d", width, height)
	}
	if len(buffer) != 640*480*4 {
		t.Fatalf("fallback buffer %d bytes", len(buffer))
	}
	//Opaque gray fill
	if buffer[0] != fallback_gray || buffer[3] != 0xff {
		t.Errorf("fallback pixel = (%d,%d)", buffer[0], buffer[3])
	}

	if renderer.IsDeviceLost() || renderer.IsSwapchainOutOfDate() {
		t.Errorf("software render set error flags")
	}
}

func TestResizeZeroDimsNoOp(t *testing.T) {
	renderer := NewRenderer(nil)
	renderer.Initialize(nil)
	defer renderer.Shutdown()

	renderer.Render(640, 480, 1.0, 0.0, 0.0, 0)

	//A minimized window reports zero on one or both axes; the current
	//surface must survive untouched
	renderer.Resize(0, 480)
	renderer.Resize(640, 0)
	renderer.Resize(0, 0)
	renderer.Resize(-1, 100)

	_, width, height := renderer.FallbackFramebuffer()
	if width != 640 || height != 480 {
		t.Errorf("zero-dim resize changed the surface to %dx%d", width, height)
	}
	if renderer.IsDeviceLost() || renderer.IsSwapchainOutOfDate() {
		t.Errorf("zero-dim resize set error flags")
	}

	//A real resize still goes through
	renderer.Resize(320, 240)
	_, width, height = renderer.FallbackFramebuffer()
	if width != 320 || height != 240 {
		t.Errorf("valid resize ignored: %dx%d", width, height)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	renderer := NewRenderer(nil)
	renderer.Initialize(nil)
	renderer.Shutdown()
	renderer.Shutdown()

	//A never-initialized renderer shuts down cleanly too
	NewRenderer(nil).Shutdown()
}

func TestUpdateImagePreconditions(t *testing.T) {
	renderer := NewRenderer(nil)
	renderer.Initialize(nil)
	defer renderer.Shutdown()

	//none of these may panic or allocate GPU objects
	renderer.UpdateImageFromData(nil, 100, 100, false)
	renderer.UpdateImageFromData(make([]byte, 16), 0, 100, false)
	renderer.UpdateImageFromData(make([]byte, 16), 100, 0, false)
	renderer.UpdateImageFromData(make([]byte, 16), 100, 100, false)
	renderer.UpdateImageFromData(make([]byte, 4), 70000, 1, false)
	renderer.UpdateImageFromData(make([]byte, 4), 10000, 10000, false)
	renderer.UpdateImageFromLDRData(make([]byte, 16), 2, 2)
	renderer.UpdateImageFromHDRData(make([]uint16, 16), 2, 2)
	renderer.UpdateImageTiled(make([]byte, 16), 100, 100, 0, 0, 2, 2, false)
	renderer.LoadImageTile(make([]byte, 16), 0, 0)

	if renderer.texture != nil {
		t.Errorf("texture created without a device")
	}
	if renderer.IsDeviceLost() {
		t.Errorf("rejected upload set the lost flag")
	}
}

func TestClearErrorFlags(t *testing.T) {
	renderer := NewRenderer(nil)
	renderer.device_lost = true
	renderer.swapchain_out_of_date = true
	renderer.ClearErrorFlags()
	if renderer.IsDeviceLost() || renderer.IsSwapchainOutOfDate() {
		t.Errorf("flags survived ClearErrorFlags")
	}
}

func TestDefaultConfigLimits(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FramesInFlight != 2 {
		t.Errorf("frames in flight = %d", cfg.FramesInFlight)
	}
	if cfg.MaxImageDim != 65536 || cfg.MaxImagePixels != 67108864 {
		t.Errorf("image caps = %d / %d", cfg.MaxImageDim, cfg.MaxImagePixels)
	}
	if cfg.MinZoom >= cfg.MaxZoom {
		t.Errorf("zoom bounds inverted: %v >= %v", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.RenderHeadroom >= cfg.StateHeadroom {
		t.Errorf("render headroom %v not tighter than state headroom %v",
			cfg.RenderHeadroom, cfg.StateHeadroom)
	}
}
