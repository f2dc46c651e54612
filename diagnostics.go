package viewvk

import (
	vk "github.com/vulkan-go/vulkan"
)

//LogObjectState prints the validity of every engine object and the sticky
//flags. Used when chasing failures that leave no driver error behind.
func (r *Renderer) LogObjectState(context string) {
	r.logger.Info("=== object state (%s) ===", context)
	r.logger.Info("flags: vulkan=%t lost=%t stale=%t",
		r.vulkan_available, r.device_lost, r.swapchain_out_of_date)

	if r.device == nil {
		r.logger.Info("device: nil")
	} else {
		r.logger.Info("instance=%t gpu=%t device=%t graphics_queue=%t present_queue=%t",
			r.device.instance != nil, r.device.gpu != nil, r.device.handle != nil,
			r.device.graphics_queue != nil, r.device.present_queue != nil)
		r.logger.Info("queue families: graphics=%d present=%d separate_present=%t",
			r.device.graphics_family, r.device.present_family, r.device.separate_present)
	}

	if r.display == nil {
		r.logger.Info("display: nil")
	} else {
		r.logger.Info("window=%t surface=%t",
			r.display.window != nil, r.display.surface != vk.NullSurface)
	}

	if r.swapchain == nil {
		r.logger.Info("swapchain: nil")
	} else {
		r.logger.Info("swapchain=%t extent=%dx%d format=%v images=%d",
			r.swapchain.handle != vk.NullSwapchain,
			r.swapchain.extent.Width, r.swapchain.extent.Height,
			r.swapchain.format, len(r.swapchain.images))
	}

	if r.sync == nil {
		r.logger.Info("sync: nil")
	} else {
		r.logger.Info("sync: frames=%d current=%d", r.sync.frames, r.sync.current)
	}

	if r.texture == nil {
		r.logger.Info("texture: nil")
	} else {
		loaded := 0
		for i := range r.texture.tiles {
			if r.texture.tiles[i].loaded {
				loaded++
			}
		}
		r.logger.Info("texture: %dx%d hdr=%t sparse=%t layout=%d tiles=%d/%d",
			r.texture.width, r.texture.height, r.texture.hdr, r.texture.sparse,
			r.texture.layout, loaded, len(r.texture.tiles))
	}
	r.logger.Info("=== end object state ===")
}

//LogDeviceLostDiagnostics records everything useful after the driver reports
//a lost device, including host memory pressure at the time of the loss
func (r *Renderer) LogDeviceLostDiagnostics(context string) {
	r.logger.Error("device lost during %s", context)
	r.LogObjectState(context)

	available := availableHostMemory()
	total := totalHostMemory()
	if total > 0 {
		r.logger.Error("host memory: %d MB available of %d MB",
			available/(1<<20), total/(1<<20))
	} else {
		r.logger.Error("host memory: not reported on this platform")
	}

	if r.device != nil && r.device.gpu != nil {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(r.device.gpu, &properties)
		properties.Deref()
		r.logger.Error("gpu: %s api=0x%x driver=0x%x",
			vk.ToString(properties.DeviceName[:]),
			properties.ApiVersion, properties.DriverVersion)
	}
}
