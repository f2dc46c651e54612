package viewvk

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"
)

//ViewerState drives the renderer from UI code. View parameters are guarded
//by the mutex so event handlers may adjust them while a frame is in flight,
//and error flag recovery is serialized against rendering with the
//in-progress counter.
type ViewerState struct {
	mutex    sync.RWMutex
	renderer *Renderer
	window   *glfw.Window
	logger   *Logger

	zoom     float64
	offset_x float64
	offset_y float64
	rotation int

	image_width  int
	image_height int
	image_hdr    bool
	image        []byte
	image_dirty  bool

	rendering   int32
	needs_reset bool
}

//NewViewerState wraps the renderer with a thread safe view model
func NewViewerState(renderer *Renderer, window *glfw.Window) *ViewerState {
	return &ViewerState{
		renderer: renderer,
		window:   window,
		logger:   NewLogger("[viewvk.viewer]"),
		zoom:     1.0,
	}
}

//SetImage replaces the current image. The pixels are uploaded on the next
//DrawImage call so callers never touch the device directly.
func (v *ViewerState) SetImage(pixels []byte, width, height int, is_hdr bool) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.image = pixels
	v.image_width = width
	v.image_height = height
	v.image_hdr = is_hdr
	v.image_dirty = true
}

//SetView updates zoom, pan and rotation together. Zoom is clamped against
//the safe viewport so a later blit cannot overflow the surface.
func (v *ViewerState) SetView(zoom, offset_x, offset_y float64, rotation int) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	zoom = sanitizeZoom(zoom)
	zoom_cap := dynamicZoomCap(v.image_width, v.image_height, rotation,
		v.renderer.cfg, v.renderer.cfg.StateHeadroom)
	if zoom > zoom_cap {
		zoom = zoom_cap
	}
	if zoom < v.renderer.cfg.MinZoom {
		zoom = v.renderer.cfg.MinZoom
	}
	v.zoom = zoom
	v.offset_x = offset_x
	v.offset_y = offset_y
	v.rotation = ((rotation % 360) + 360) % 360
}

//View returns the current view parameters
func (v *ViewerState) View() (zoom, offset_x, offset_y float64, rotation int) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.zoom, v.offset_x, v.offset_y, v.rotation
}

//DrawImage renders one frame at the given surface size. It uploads pending
//image data first, applies a second tighter zoom cap at render time, and
//records whether the sticky error flags need recovery afterwards.
//
//The shared lock is held across the upload and the render so the reset
//path's exclusive lock cannot tear down device objects under a frame that
//is mid-flight. The flag writes happen after release since the lock does
//not upgrade.
func (v *ViewerState) DrawImage(width, height int) {
	atomic.AddInt32(&v.rendering, 1)
	defer atomic.AddInt32(&v.rendering, -1)

	v.mutex.RLock()
	zoom := v.zoom
	rotation := v.rotation
	image_w := v.image_width
	image_h := v.image_height

	uploaded := false
	if v.image_dirty && len(v.image) > 0 {
		v.renderer.UpdateImageFromData(v.image, image_w, image_h, v.image_hdr)
		uploaded = true
	}

	zoom_cap := dynamicZoomCap(image_w, image_h, rotation,
		v.renderer.cfg, v.renderer.cfg.RenderHeadroom)
	if zoom > zoom_cap {
		zoom = zoom_cap
	}

	v.renderer.Render(width, height, zoom, v.offset_x, v.offset_y, rotation)

	failed := v.renderer.IsDeviceLost() || v.renderer.IsSwapchainOutOfDate()
	v.mutex.RUnlock()

	if uploaded || failed {
		v.mutex.Lock()
		if uploaded {
			v.image_dirty = false
		}
		if failed {
			v.needs_reset = true
		}
		v.mutex.Unlock()
	}
}

//NeedsReset reports whether a previous frame flagged an error condition
func (v *ViewerState) NeedsReset() bool {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.needs_reset
}

//ResetIfNeeded recovers from sticky error flags set by earlier frames.
//A lost device tears the engine down and reinitializes from scratch, a
//stale swapchain only rebuilds the chain. The counter spin pre-drains
//in-flight DrawImage calls; the exclusive lock is what actually excludes
//a frame holding the shared lock.
func (v *ViewerState) ResetIfNeeded(width, height int) {
	if !v.NeedsReset() {
		return
	}
	for atomic.LoadInt32(&v.rendering) > 0 {
		runtime.Gosched()
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()
	if !v.needs_reset {
		return
	}

	if v.renderer.IsDeviceLost() {
		v.logger.Warn("device lost, reinitializing renderer")
		v.renderer.Shutdown()
		if !v.renderer.Initialize(v.window) {
			v.logger.Error("reinitialization failed")
		}
		v.image_dirty = len(v.image) > 0
	} else if v.renderer.IsSwapchainOutOfDate() {
		v.renderer.Resize(width, height)
		v.renderer.ClearErrorFlags()
	}
	v.needs_reset = false
}
