package viewvk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

//Render draws one frame: clear, blit the current texture into the
//destination rectangle derived from zoom/offset/rotation, transition to
//present, submit and present. Nothing is returned; callers poll the
//status flags afterwards and drive recovery themselves.
func (r *Renderer) Render(width, height int, zoom, offset_x, offset_y float64, rotation int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width > r.cfg.MaxImageDim || height > r.cfg.MaxImageDim {
		return
	}

	if !r.vulkan_available {
		if r.fallback == nil {
			r.fallback = newSoftwareFallback(width, height)
		}
		r.fallback.render(width, height)
		return
	}

	//Hard gate: any call into a lost device is undefined
	if r.device_lost {
		return
	}
	if r.device == nil || r.device.handle == nil || r.swapchain == nil || r.sync == nil {
		return
	}

	zoom = sanitizeZoom(zoom)

	if r.swapchain.extent.Width != uint32(width) || r.swapchain.extent.Height != uint32(height) {
		if !r.recreateSwapchain(width, height) {
			return
		}
	}

	//No image loaded: keep the instruction card texture current before the
	//frame's own command buffer begins recording
	if !r.textureBlitReady() {
		r.ensureOverlayTexture(width, height)
	}

	ret := r.sync.Wait(r.device.handle)
	if !r.checkResult(ret) {
		return
	}

	var image_index uint32
	ret = vk.AcquireNextImage(r.device.handle, r.swapchain.handle, vk.MaxUint64,
		r.sync.AcquireSemaphore(), vk.NullFence, &image_index)
	if ret == vk.ErrorOutOfDate {
		r.recreateSwapchain(width, height)
		return
	}
	if ret != vk.Success && ret != vk.Suboptimal {
		r.checkResult(ret)
		return
	}
	if int(image_index) >= len(r.swapchain.commands) {
		r.swapchain_out_of_date = true
		return
	}

	cmd := r.swapchain.commands[image_index]
	target := r.swapchain.images[image_index]

	vk.ResetCommandBuffer(cmd, 0)
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if !r.checkResult(ret) {
		return
	}

	//The frame fully repaints the image, so prior contents are discarded
	recordTransition(cmd, target, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	r.recordComposite(cmd, target, width, height, zoom, offset_x, offset_y, rotation)
	recordTransition(cmd, target, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc)

	ret = vk.EndCommandBuffer(cmd)
	if !r.checkResult(ret) {
		return
	}

	r.sync.ResetFence(r.device.handle)
	ret = vk.QueueSubmit(r.device.graphics_queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.sync.AcquireSemaphore()},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{r.sync.RenderSemaphore()},
	}}, r.sync.Fence())
	if isError(ret) {
		//A failed submit leaves the GPU state unknowable; treat every
		//non-stale failure as loss and let the caller rebuild
		if !r.checkResult(ret) && !r.swapchain_out_of_date {
			r.device_lost = true
			r.LogDeviceLostDiagnostics("queue submit")
		}
		return
	}

	ret = vk.QueuePresent(r.device.present_queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.sync.RenderSemaphore()},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain.handle},
		PImageIndices:      []uint32{image_index},
	})
	switch ret {
	case vk.Success:
	case vk.ErrorOutOfDate, vk.Suboptimal:
		r.swapchain_out_of_date = true
		return
	case vk.ErrorDeviceLost:
		r.device_lost = true
		r.LogDeviceLostDiagnostics("queue present")
		return
	default:
		r.swapchain_out_of_date = true
		return
	}

	//Only a fully successful submit and present advances the ring; a
	//failed frame retries the same slot
	r.sync.Advance()
}

//textureBlitReady is true when the current texture can be blitted this frame
func (r *Renderer) textureBlitReady() bool {
	return r.texture != nil && r.texture.image != vk.NullImage &&
		r.texture.layout == vk.ImageLayoutTransferSrcOptimal
}

//recordComposite clears the target and blits whichever source applies:
//the loaded texture, the instruction overlay, or nothing but the clear
func (r *Renderer) recordComposite(cmd vk.CommandBuffer, target vk.Image,
	width, height int, zoom, offset_x, offset_y float64, rotation int) {

	full_range := vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: 1,
		LayerCount: 1,
	}

	clear := clearColor(0.0, 0.0, 0.0, 1.0)
	if !r.textureBlitReady() && r.overlay_texture == nil {
		//Raster path failed, fall back to a plain dark blue clear
		clear = clearColor(0.1, 0.1, 0.2, 1.0)
	}
	vk.CmdClearColorImage(cmd, target, vk.ImageLayoutTransferDstOptimal,
		&clear, 1, []vk.ImageSubresourceRange{full_range})

	layers := vk.ImageSubresourceLayers{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LayerCount: 1,
	}

	if r.textureBlitReady() {
		rect, ok := computeBlitRect(width, height, r.texture.width, r.texture.height,
			zoom, offset_x, offset_y, rotation)
		if !ok {
			rect = centerPixelRect(int32(width), int32(height))
		}
		rect = clampBlitRect(rect, int32(width), int32(height))

		vk.CmdBlitImage(cmd, r.texture.image, vk.ImageLayoutTransferSrcOptimal,
			target, vk.ImageLayoutTransferDstOptimal, 1, []vk.ImageBlit{{
				SrcSubresource: layers,
				SrcOffsets: [2]vk.Offset3D{
					{X: 0, Y: 0, Z: 0},
					{X: int32(r.texture.width), Y: int32(r.texture.height), Z: 1},
				},
				DstSubresource: layers,
				DstOffsets: [2]vk.Offset3D{
					{X: rect.x0, Y: rect.y0, Z: 0},
					{X: rect.x1, Y: rect.y1, Z: 1},
				},
			}}, vk.FilterLinear)
		return
	}

	if r.overlay_texture != nil && r.overlay_texture.layout == vk.ImageLayoutTransferSrcOptimal {
		vk.CmdBlitImage(cmd, r.overlay_texture.image, vk.ImageLayoutTransferSrcOptimal,
			target, vk.ImageLayoutTransferDstOptimal, 1, []vk.ImageBlit{{
				SrcSubresource: layers,
				SrcOffsets: [2]vk.Offset3D{
					{X: 0, Y: 0, Z: 0},
					{X: int32(r.overlay_texture.width), Y: int32(r.overlay_texture.height), Z: 1},
				},
				DstSubresource: layers,
				DstOffsets: [2]vk.Offset3D{
					{X: 0, Y: 0, Z: 0},
					{X: int32(width), Y: int32(height), Z: 1},
				},
			}}, vk.FilterNearest)
	}
}

//ensureOverlayTexture keeps a surface-sized instruction card uploaded for
//frames with no image loaded. Re-rendered only when the surface changes.
func (r *Renderer) ensureOverlayTexture(width, height int) {
	if r.overlay_texture.Matches(width, height, false) &&
		r.overlay_texture.layout == vk.ImageLayoutTransferSrcOptimal {
		return
	}
	if r.overlay_texture != nil {
		r.device.WaitIdle()
		r.overlay_texture.Destroy(r.device)
		r.overlay_texture = nil
	}
	pixels := renderOverlayPixels(width, height)
	if pixels == nil {
		return
	}
	texture, err := NewCoreTexture(r.device, width, height, false)
	if err != nil {
		r.logger.Warn("overlay texture unavailable: %v", err)
		return
	}
	r.overlay_texture = texture
	r.uploadOverlay(texture, pixels, width, height)
	if texture.layout != vk.ImageLayoutTransferSrcOptimal {
		texture.Destroy(r.device)
		r.overlay_texture = nil
	}
}

func (r *Renderer) uploadOverlay(texture *CoreTexture, pixels []byte, width, height int) {
	r.uploadPixels(texture, pixels, vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(width), Height: uint32(height), Depth: 1},
	})
}

//clearColor packs four float components into the vk clear color union
func clearColor(red, green, blue, alpha float32) vk.ClearColorValue {
	var value vk.ClearColorValue
	floats := (*[4]float32)(unsafe.Pointer(&value))
	floats[0] = red
	floats[1] = green
	floats[2] = blue
	floats[3] = alpha
	return value
}
