package viewvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreSwapchain owns the presentation chain: the swapchain handle, the
//negotiated format, the extent, the swapchain images (non-owned), their
//views (owned), and one command buffer per image. The whole set is
//re-derived on every recreation, never incrementally patched.
type CoreSwapchain struct {
	handle   vk.Swapchain
	format   vk.SurfaceFormat
	extent   vk.Extent2D
	images   []vk.Image
	views    []vk.ImageView
	commands []vk.CommandBuffer
	depth    int
}

//NewCoreSwapchain negotiates the chain against the surface capabilities.
//Zero width or height is a precondition failure: no creation is attempted
//for a minimized window.
func NewCoreSwapchain(device *CoreDevice, display *CoreDisplay, pool *CorePool, width, height int) (*CoreSwapchain, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("swapchain extent must be non-zero")
	}
	if device.handle == nil || display.surface == vk.NullSurface {
		return nil, errors.New("swapchain requires a device and surface")
	}

	var capabilities vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(device.gpu, display.surface, &capabilities)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "query surface capabilities")
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	format, err := chooseSurfaceFormat(device.gpu, display.surface)
	if err != nil {
		return nil, err
	}

	extent := clampSwapExtent(uint32(width), uint32(height), capabilities)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, errors.New("surface reports a zero drawable extent")
	}

	image_count := clampImageCount(2, capabilities.MinImageCount, capabilities.MaxImageCount)

	//Prefer the identity transform when the surface supports it
	pre_transform := capabilities.CurrentTransform
	if vk.SurfaceTransformFlagBits(capabilities.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		pre_transform = vk.SurfaceTransformIdentityBit
	}

	composite_alpha := vk.CompositeAlphaOpaqueBit
	for _, candidate := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if capabilities.SupportedCompositeAlpha&vk.CompositeAlphaFlags(candidate) != 0 {
			composite_alpha = candidate
			break
		}
	}

	create_info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          display.surface,
		MinImageCount:    image_count,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage: vk.ImageUsageFlags(vk.ImageUsageTransferDstBit |
			vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     pre_transform,
		CompositeAlpha:   composite_alpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if device.separate_present {
		create_info.ImageSharingMode = vk.SharingModeConcurrent
		create_info.QueueFamilyIndexCount = 2
		create_info.PQueueFamilyIndices = []uint32{device.graphics_family, device.present_family}
	}

	var core CoreSwapchain
	ret = vk.CreateSwapchain(device.handle, &create_info, nil, &core.handle)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create swapchain")
	}
	core.format = format
	core.extent = extent
	display.surface_format = format
	display.extent = extent

	var actual_count uint32
	vk.GetSwapchainImages(device.handle, core.handle, &actual_count, nil)
	core.images = make([]vk.Image, actual_count)
	ret = vk.GetSwapchainImages(device.handle, core.handle, &actual_count, core.images)
	if isError(ret) {
		core.Destroy(device, pool)
		return nil, errors.Wrap(NewError(ret), "get swapchain images")
	}
	core.depth = int(actual_count)

	core.views = make([]vk.ImageView, core.depth)
	for index := 0; index < core.depth; index++ {
		var view vk.ImageView
		ret = vk.CreateImageView(device.handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    core.images[index],
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleR,
				G: vk.ComponentSwizzleG,
				B: vk.ComponentSwizzleB,
				A: vk.ComponentSwizzleA,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		if isError(ret) {
			core.Destroy(device, pool)
			return nil, errors.Wrap(NewError(ret), "create swapchain image view")
		}
		core.views[index] = view
	}

	//Command buffers track the image count, re-allocated on every recreation
	commands, err := pool.AllocateBuffers(device.handle, core.depth)
	if err != nil {
		core.Destroy(device, pool)
		return nil, err
	}
	core.commands = commands

	return &core, nil
}

//Destroy releases views and command buffers before the chain itself.
//Safe on a partially constructed swapchain.
func (core *CoreSwapchain) Destroy(device *CoreDevice, pool *CorePool) {
	if core == nil || device.handle == nil {
		return
	}
	if pool != nil {
		pool.FreeBuffers(device.handle, core.commands)
		core.commands = nil
	}
	for _, view := range core.views {
		if view != vk.NullImageView {
			vk.DestroyImageView(device.handle, view, nil)
		}
	}
	core.views = nil
	core.images = nil
	if core.handle != vk.NullSwapchain {
		vk.DestroySwapchain(device.handle, core.handle, nil)
		core.handle = vk.NullSwapchain
	}
	core.depth = 0
}

//chooseSurfaceFormat prefers 8-bit sRGB, falls back to UNORM, then to the
//first reported format. Fixed preference order, not renegotiated per frame.
func chooseSurfaceFormat(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceFormat, error) {
	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if count == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no color formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
	}

	for _, want := range []vk.Format{vk.FormatB8g8r8a8Srgb, vk.FormatB8g8r8a8Unorm} {
		for _, available := range formats {
			if available.Format == want {
				return available, nil
			}
		}
	}
	if formats[0].Format == vk.FormatUndefined {
		formats[0].Format = vk.FormatB8g8r8a8Unorm
		formats[0].ColorSpace = vk.ColorSpaceSrgbNonlinear
	}
	return formats[0], nil
}

//clampSwapExtent takes the surface extent verbatim when the platform fixes
//it, otherwise clamps the requested size into the surface bounds
func clampSwapExtent(width, height uint32, capabilities vk.SurfaceCapabilities) vk.Extent2D {
	if capabilities.CurrentExtent.Width != vk.MaxUint32 {
		return capabilities.CurrentExtent
	}
	extent := vk.Extent2D{Width: width, Height: height}
	if extent.Width < capabilities.MinImageExtent.Width {
		extent.Width = capabilities.MinImageExtent.Width
	}
	if extent.Width > capabilities.MaxImageExtent.Width {
		extent.Width = capabilities.MaxImageExtent.Width
	}
	if extent.Height < capabilities.MinImageExtent.Height {
		extent.Height = capabilities.MinImageExtent.Height
	}
	if extent.Height > capabilities.MaxImageExtent.Height {
		extent.Height = capabilities.MaxImageExtent.Height
	}
	return extent
}

//clampImageCount bounds the desired image count by the surface limits; a
//zero max means unbounded
func clampImageCount(desired, min, max uint32) uint32 {
	if desired < min {
		desired = min
	}
	if max > 0 && desired > max {
		desired = max
	}
	return desired
}
