package viewvk

import (
	"image"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

//ProgressFunc receives initialization checkpoints for splash screen
//feedback. Percentages are monotonically increasing.
type ProgressFunc func(percent int, stage string)

//Renderer is the engine entry point. It owns the device context, the
//swapchain, the frame synchronization ring and the current image texture,
//and reports every failure through the three sticky flags instead of
//panicking across the public boundary.
//
//All command recording and submission must happen on the thread that owns
//the window; the caller serializes Render against Resize and Shutdown.
type Renderer struct {
	cfg    *Config
	logger *Logger
	name   string

	display   *CoreDisplay
	device    *CoreDevice
	pool      *CorePool
	swapchain *CoreSwapchain
	sync      *CoreSync
	texture   *CoreTexture
	fallback  *softwareFallback

	//Cached instruction card shown while no image is loaded
	overlay_texture *CoreTexture

	//Sticky status flags; a frame can be stale and lost at the same time
	//and callers poll whichever is set
	device_lost           bool
	swapchain_out_of_date bool
	vulkan_available      bool
}

func NewRenderer(cfg *Config) *Renderer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Renderer{
		cfg:    cfg,
		logger: NewLogger("viewvk"),
		name:   "viewvk",
	}
}

//SetLogger replaces the default stderr logger
func (r *Renderer) SetLogger(logger *Logger) {
	if logger != nil {
		r.logger = logger
	}
}

//Initialize brings up the full device context, swapchain and sync ring.
//A nil window or any device level failure arms the software fallback and
//still returns true: the engine stays usable, flagged unavailable.
//Returns false only when a created device could not be brought to a
//renderable state and the fallback could not be armed either.
func (r *Renderer) Initialize(window *glfw.Window) bool {
	return r.InitializeWithProgress(window, nil)
}

func (r *Renderer) InitializeWithProgress(window *glfw.Window, progress ProgressFunc) bool {
	report := func(percent int, stage string) {
		if progress != nil {
			progress(percent, stage)
		}
		r.logger.Info("init %3d%% %s", percent, stage)
	}

	r.device_lost = false
	r.swapchain_out_of_date = false
	r.vulkan_available = false

	if window == nil {
		r.enableSoftwareFallback(0, 0)
		report(100, "software fallback ready (headless)")
		return true
	}

	r.display = NewCoreDisplay(window)
	width, height := r.display.GetSize()

	//Hard floor on available host memory before any GPU work is attempted
	if available := availableHostMemory(); available != 0 && available < r.cfg.MinHostMemory {
		r.logger.Warn("host memory below floor (%d < %d), using software fallback",
			available, r.cfg.MinHostMemory)
		r.enableSoftwareFallback(width, height)
		report(100, "software fallback ready (low memory)")
		return true
	}

	//Driver presence: a loader that cannot resolve proc addrs means no
	//compatible vulkan on this host
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		r.logger.Warn("vulkan loader unavailable: %v", err)
		r.enableSoftwareFallback(width, height)
		report(100, "software fallback ready (no driver)")
		return true
	}

	report(5, "Creating Vulkan instance")
	r.device = NewCoreDevice()
	if err := r.device.CreateInstance(r.display, r.cfg, r.name); err != nil {
		r.logger.Error("instance creation failed: %v", err)
		r.device = nil
		r.enableSoftwareFallback(width, height)
		report(100, "software fallback ready (no instance)")
		return true
	}

	report(20, "Creating presentation surface")
	if err := r.display.CreateSurface(r.device.instance); err != nil {
		r.logger.Error("surface creation failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no surface)")
		return true
	}

	report(35, "Selecting graphics device")
	if err := r.device.PickPhysicalDevice(r.display.surface); err != nil {
		r.logger.Error("device selection failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no adapter)")
		return true
	}

	report(55, "Creating logical device and queues")
	if err := r.device.CreateLogicalDevice(r.display.surface, r.cfg); err != nil {
		r.logger.Error("logical device creation failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no device)")
		return true
	}

	report(65, "Creating command pool")
	pool, err := NewCorePool(r.device.handle, r.device.graphics_family)
	if err != nil {
		r.logger.Error("command pool creation failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no command pool)")
		return true
	}
	r.pool = pool

	report(80, "Creating swapchain")
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	swapchain, err := NewCoreSwapchain(r.device, r.display, r.pool, width, height)
	if err != nil {
		r.logger.Error("swapchain creation failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no swapchain)")
		return true
	}
	r.swapchain = swapchain

	report(90, "Creating synchronization objects")
	sync, err := NewCoreSync(r.device.handle, r.cfg.FramesInFlight)
	if err != nil {
		r.logger.Error("sync object creation failed: %v", err)
		r.abortInitialize()
		report(100, "software fallback ready (no sync objects)")
		return true
	}
	r.sync = sync

	r.vulkan_available = true
	report(100, "Vulkan ready")
	return true
}

//abortInitialize unwinds a partial bring-up in reverse creation order and
//arms the software fallback
func (r *Renderer) abortInitialize() {
	width, height := 0, 0
	if r.display != nil {
		width, height = r.display.GetSize()
	}
	if r.device != nil {
		r.device.WaitIdle()
	}
	if r.sync != nil && r.device != nil {
		r.sync.Destroy(r.device.handle)
		r.sync = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy(r.device, r.pool)
		r.swapchain = nil
	}
	if r.pool != nil && r.device != nil {
		r.pool.Destroy(r.device.handle)
		r.pool = nil
	}
	if r.device != nil {
		r.device.DestroyDevice()
		if r.display != nil {
			r.display.DestroySurface(r.device.instance)
		}
		r.device.DestroyInstance()
		r.device = nil
	}
	r.enableSoftwareFallback(width, height)
}

func (r *Renderer) enableSoftwareFallback(width, height int) {
	r.vulkan_available = false
	r.fallback = newSoftwareFallback(width, height)
}

//Shutdown releases everything in reverse creation order. Idempotent and
//safe on a partially initialized instance. Device-dependent cleanup is
//skipped entirely when the device is known lost, since calling into a
//lost device is undefined.
func (r *Renderer) Shutdown() {
	lost := r.device_lost
	r.device_lost = false
	r.swapchain_out_of_date = false
	r.vulkan_available = false

	if r.device == nil {
		r.display = nil
		return
	}

	if r.device.handle != nil {
		if !lost {
			if r.device.WaitIdle() == vk.ErrorDeviceLost {
				lost = true
			}
		}
		if lost {
			//The handles below belong to a lost device; destroying them
			//would call into it. Drop them and let the driver reclaim.
			r.device.ForgetDevice()
			r.texture = nil
			r.overlay_texture = nil
			r.swapchain = nil
			r.sync = nil
			r.pool = nil
		} else {
			if r.texture != nil {
				r.texture.Destroy(r.device)
				r.texture = nil
			}
			if r.overlay_texture != nil {
				r.overlay_texture.Destroy(r.device)
				r.overlay_texture = nil
			}
			if r.swapchain != nil {
				r.swapchain.Destroy(r.device, r.pool)
				r.swapchain = nil
			}
			if r.sync != nil {
				r.sync.Destroy(r.device.handle)
				r.sync = nil
			}
			if r.pool != nil {
				r.pool.Destroy(r.device.handle)
				r.pool = nil
			}
			r.device.DestroyDevice()
		}
	}

	if r.display != nil {
		r.display.DestroySurface(r.device.instance)
	}
	r.device.DestroyInstance()
	r.device = nil
	r.display = nil
}

//Resize recreates the swapchain for the new client size. No-op when the
//dimensions are zero or unchanged.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if !r.vulkan_available || r.device == nil || r.device.handle == nil {
		if r.fallback != nil {
			r.fallback.render(width, height)
		}
		return
	}
	if r.swapchain != nil &&
		r.swapchain.extent.Width == uint32(width) && r.swapchain.extent.Height == uint32(height) {
		return
	}
	r.recreateSwapchain(width, height)
}

//recreateSwapchain performs the full idle-destroy-create cycle; there is
//no incremental resize
func (r *Renderer) recreateSwapchain(width, height int) bool {
	if r.device == nil || r.device.handle == nil {
		return false
	}
	ret := r.device.WaitIdle()
	if !r.checkResult(ret) {
		return false
	}
	if r.swapchain != nil {
		r.swapchain.Destroy(r.device, r.pool)
		r.swapchain = nil
	}
	swapchain, err := NewCoreSwapchain(r.device, r.display, r.pool, width, height)
	if err != nil {
		r.logger.Error("swapchain recreation failed: %v", err)
		r.swapchain_out_of_date = true
		return false
	}
	r.swapchain = swapchain
	return true
}

//ClearErrorFlags clears the recoverable stale-surface flag; the lost flag
//is cleared too so a caller-driven rebuild can start clean
func (r *Renderer) ClearErrorFlags() {
	r.device_lost = false
	r.swapchain_out_of_date = false
}

func (r *Renderer) IsDeviceLost() bool {
	return r.device_lost
}

func (r *Renderer) IsSwapchainOutOfDate() bool {
	return r.swapchain_out_of_date
}

func (r *Renderer) IsVulkanAvailable() bool {
	return r.vulkan_available
}

//IsReady is true when a frame can be rendered on the GPU path right now
func (r *Renderer) IsReady() bool {
	return r.vulkan_available && !r.device_lost &&
		r.device != nil && r.device.handle != nil && r.swapchain != nil
}

//FallbackFramebuffer exposes the CPU buffer for the window layer to blit;
//nil when the software path has never rendered
func (r *Renderer) FallbackFramebuffer() ([]byte, int, int) {
	if r.fallback == nil {
		return nil, 0, 0
	}
	return r.fallback.buffer, r.fallback.width, r.fallback.height
}

//checkResult folds a vk result into the sticky flags. Unexpected errors
//are conservatively treated as failure without flag noise.
func (r *Renderer) checkResult(ret vk.Result) bool {
	switch ret {
	case vk.Success:
		return true
	case vk.ErrorDeviceLost:
		r.device_lost = true
		r.logger.Error("device lost (%d)", ret)
		r.LogDeviceLostDiagnostics("checkResult")
		return false
	case vk.ErrorOutOfDate, vk.Suboptimal:
		r.swapchain_out_of_date = true
		return false
	default:
		return false
	}
}

//UpdateImageFromData uploads a tightly packed RGBA pixel buffer as the
//current texture. 4 bytes per pixel for LDR, 8 bytes per pixel (16-bit
//float components) for HDR. The texture is recreated only when width,
//height or HDR-ness changes; a same-shape re-upload reuses the object.
func (r *Renderer) UpdateImageFromData(pixels []byte, width, height int, is_hdr bool) {
	if len(pixels) == 0 || width <= 0 || height <= 0 {
		return
	}
	if width > r.cfg.MaxImageDim || height > r.cfg.MaxImageDim {
		r.logger.Warn("image rejected, dimension over cap: %dx%d", width, height)
		return
	}
	if width*height > r.cfg.MaxImagePixels {
		r.logger.Warn("image rejected, pixel count over cap: %dx%d", width, height)
		return
	}
	needed := stagingSize(width, height, is_hdr)
	if len(pixels) < needed {
		r.logger.Warn("image rejected, %d bytes given, %d needed", len(pixels), needed)
		return
	}
	if r.device_lost || !r.vulkan_available || r.device == nil || r.device.handle == nil {
		return
	}

	if !r.texture.Matches(width, height, is_hdr) {
		if r.texture != nil {
			r.device.WaitIdle()
			r.texture.Destroy(r.device)
			r.texture = nil
		}
		texture, err := NewCoreTexture(r.device, width, height, is_hdr)
		if err != nil {
			r.logger.Error("texture creation failed: %v", err)
			return
		}
		r.texture = texture
	}

	r.uploadPixels(r.texture, pixels[:needed], vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(width), Height: uint32(height), Depth: 1},
	})
}

//uploadPixels runs the staging copy with the layout protocol: previous
//layout to TRANSFER_DST, buffer copy, TRANSFER_DST to TRANSFER_SRC. A
//failure at any step releases the staging buffer and resets the tracked
//layout so the next upload starts from a discard transition.
func (r *Renderer) uploadPixels(texture *CoreTexture, pixels []byte, region vk.BufferImageCopy) {
	staging, err := NewStagingBuffer(r.device, pixels)
	if err != nil {
		r.logger.Error("staging buffer failed: %v", err)
		return
	}
	defer staging.Destroy()

	previous := texture.layout
	var record_err error
	err = r.pool.OneTimeCommands(r.device.handle, r.device.graphics_queue, func(cmd vk.CommandBuffer) {
		if record_err = recordTransition(cmd, texture.image, previous, vk.ImageLayoutTransferDstOptimal); record_err != nil {
			return
		}
		vk.CmdCopyBufferToImage(cmd, staging.buffer, texture.image,
			vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
		record_err = recordTransition(cmd, texture.image,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal)
	})
	if record_err != nil {
		r.logger.Error("upload transition rejected: %v", record_err)
		texture.layout = vk.ImageLayoutUndefined
		return
	}
	if err != nil {
		r.logger.Error("upload submission failed: %v", err)
		texture.layout = vk.ImageLayoutUndefined
		return
	}
	texture.layout = vk.ImageLayoutTransferSrcOptimal
}

//UpdateImageFromLDRData uploads 8-bit sRGB RGBA pixels
func (r *Renderer) UpdateImageFromLDRData(pixels []byte, width, height int) {
	r.UpdateImageFromData(pixels, width, height, false)
}

//UpdateImageFromHDRData uploads 16-bit float RGBA pixels given as the
//component stream
func (r *Renderer) UpdateImageFromHDRData(pixels []uint16, width, height int) {
	if len(pixels) == 0 {
		return
	}
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&pixels[0])), len(pixels)*2)
	r.UpdateImageFromData(bytes, width, height, true)
}

//UpdateImageFromRGBA uploads a decoded standard library image, repacking
//rows when the stride carries padding
func (r *Renderer) UpdateImageFromRGBA(img *image.RGBA) {
	if img == nil {
		return
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return
	}
	if img.Stride == width*4 && bounds.Min.X == 0 && bounds.Min.Y == 0 {
		r.UpdateImageFromData(img.Pix, width, height, false)
		return
	}
	packed := make([]byte, width*height*4)
	for row := 0; row < height; row++ {
		src := img.PixOffset(bounds.Min.X, bounds.Min.Y+row)
		copy(packed[row*width*4:(row+1)*width*4], img.Pix[src:src+width*4])
	}
	r.UpdateImageFromData(packed, width, height, false)
}
