package viewvk

import (
	"sync"
	"testing"
)

func headlessViewer() *ViewerState {
	renderer := NewRenderer(nil)
	renderer.Initialize(nil)
	return NewViewerState(renderer, nil)
}

func TestViewerSetView(t *testing.T) {
	viewer := headlessViewer()
	defer viewer.renderer.Shutdown()

	viewer.SetView(2.0, 15, -30, 90)
	zoom, offset_x, offset_y, rotation := viewer.View()
	if zoom != 2.0 || offset_x != 15 || offset_y != -30 || rotation != 90 {
		t.Errorf("view = (%v,%v,%v,%d)", zoom, offset_x, offset_y, rotation)
	}

	//Garbage zoom collapses to identity before the cap is applied
	viewer.SetView(1e12, 0, 0, 0)
	zoom, _, _, _ = viewer.View()
	if zoom != 1.0 {
		t.Errorf("pathological zoom kept: %v", zoom)
	}

	//Rotation normalizes into [0,360)
	viewer.SetView(1.0, 0, 0, -90)
	_, _, _, rotation = viewer.View()
	if rotation != 270 {
		t.Errorf("rotation -90 normalized to %d", rotation)
	}
	viewer.SetView(1.0, 0, 0, 450)
	_, _, _, rotation = viewer.View()
	if rotation != 90 {
		t.Errorf("rotation 450 normalized to %d", rotation)
	}
}

func TestViewerZoomCappedByImage(t *testing.T) {
	viewer := headlessViewer()
	defer viewer.renderer.Shutdown()

	viewer.SetImage(make([]byte, 16), 16384, 16384, false)
	viewer.SetView(8.0, 0, 0, 0)
	zoom, _, _, _ := viewer.View()
	cap_zoom := dynamicZoomCap(16384, 16384, 0,
		viewer.renderer.cfg, viewer.renderer.cfg.StateHeadroom)
	if zoom > cap_zoom {
		t.Errorf("zoom %v exceeds cap %v for a huge image", zoom, cap_zoom)
	}
}

func TestViewerDrawHeadless(t *testing.T) {
	viewer := headlessViewer()
	defer viewer.renderer.Shutdown()

	viewer.DrawImage(640, 480)
	if viewer.NeedsReset() {
		t.Errorf("software frame requested a reset")
	}

	//View updates from event handlers run concurrently with the draw loop
	var group sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		group.Add(1)
		go func(seed int) {
			defer group.Done()
			for i := 0; i < 100; i++ {
				viewer.SetView(float64(seed+1), float64(i), float64(-i), (i*90)%360)
				_, _, _, _ = viewer.View()
			}
		}(worker)
	}
	for i := 0; i < 100; i++ {
		viewer.DrawImage(640, 480)
	}
	group.Wait()

	viewer.ResetIfNeeded(640, 480)
}

func TestViewerResetExcludesDraw(t *testing.T) {
	viewer := headlessViewer()
	defer viewer.renderer.Shutdown()

	//A recovery thread repeatedly flags and resets while the render loop
	//runs; the draw's shared lock must keep every reset out of a frame
	//that is mid-flight, so both sides mutate the fallback surface without
	//overlapping
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			viewer.mutex.Lock()
			viewer.renderer.swapchain_out_of_date = true
			viewer.needs_reset = true
			viewer.mutex.Unlock()
			viewer.ResetIfNeeded(320, 240)
		}
	}()
	for i := 0; i < 200; i++ {
		viewer.DrawImage(640, 480)
	}
	<-done

	if viewer.renderer.IsDeviceLost() {
		t.Errorf("recovery cycling lost the renderer")
	}
	buffer, width, height := viewer.renderer.FallbackFramebuffer()
	if len(buffer) != width*height*4 {
		t.Errorf("fallback buffer %d bytes for %dx%d after recovery cycling",
			len(buffer), width, height)
	}
}

func TestViewerResetClearsStale(t *testing.T) {
	viewer := headlessViewer()
	defer viewer.renderer.Shutdown()

	viewer.renderer.swapchain_out_of_date = true
	viewer.DrawImage(640, 480)
	if !viewer.NeedsReset() {
		t.Fatalf("stale flag not noticed after draw")
	}

	viewer.ResetIfNeeded(640, 480)
	if viewer.NeedsReset() {
		t.Errorf("reset left the pending flag set")
	}
	if viewer.renderer.IsSwapchainOutOfDate() {
		t.Errorf("reset left the stale flag set")
	}
}
