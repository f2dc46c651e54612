package viewvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//ImageTile is one cell of a sparse texture's grid. Tiles are loaded once
//and never evicted; loaded tiles are never re-uploaded.
type ImageTile struct {
	x, y          int
	width, height int
	loaded        bool
	memory        vk.DeviceMemory
}

//CoreTexture is the single current-image GPU texture. The layout is
//tracked explicitly because vulkan offers no way to query it back, and
//transitions are only recorded for pairs the tracker knows.
type CoreTexture struct {
	image  vk.Image
	memory vk.DeviceMemory
	format vk.Format
	layout vk.ImageLayout

	width  int
	height int
	hdr    bool

	sparse    bool
	tile_size int
	tiles_x   int
	tiles_y   int
	tiles     []ImageTile
}

//Format is decided solely by the HDR flag; there is no negotiation
func textureFormat(is_hdr bool) vk.Format {
	if is_hdr {
		return vk.FormatR16g16b16a16Sfloat
	}
	return vk.FormatR8g8b8a8Srgb
}

func bytesPerPixel(is_hdr bool) int {
	if is_hdr {
		return 8
	}
	return 4
}

func stagingSize(width, height int, is_hdr bool) int {
	return width * height * bytesPerPixel(is_hdr)
}

//Matches reports whether the held texture can accept a re-upload of the
//same shape without recreation
func (t *CoreTexture) Matches(width, height int, is_hdr bool) bool {
	return t != nil && t.image != vk.NullImage &&
		t.width == width && t.height == height && t.hdr == is_hdr
}

//NewCoreTexture creates a regular (non-sparse) sampleable transfer target
func NewCoreTexture(device *CoreDevice, width, height int, is_hdr bool) (*CoreTexture, error) {
	format := textureFormat(is_hdr)

	var image vk.Image
	ret := vk.CreateImage(device.handle, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  uint32(width),
			Height: uint32(height),
			Depth:  1,
		},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage: vk.ImageUsageFlags(vk.ImageUsageTransferDstBit |
			vk.ImageUsageTransferSrcBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create texture image")
	}

	var mem_reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.handle, image, &mem_reqs)
	mem_reqs.Deref()

	mem_type, ok := FindRequiredMemoryType(device.memory_properties, mem_reqs.MemoryTypeBits,
		vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		vk.DestroyImage(device.handle, image, nil)
		return nil, errors.New("no device local memory type for texture")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  mem_reqs.Size,
		MemoryTypeIndex: mem_type,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyImage(device.handle, image, nil)
		return nil, errors.Wrap(NewError(ret), "allocate texture memory")
	}

	ret = vk.BindImageMemory(device.handle, image, memory, 0)
	if isError(ret) {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyImage(device.handle, image, nil)
		return nil, errors.Wrap(NewError(ret), "bind texture memory")
	}

	return &CoreTexture{
		image:  image,
		memory: memory,
		format: format,
		layout: vk.ImageLayoutUndefined,
		width:  width,
		height: height,
		hdr:    is_hdr,
	}, nil
}

//Destroy frees all sparse tile memory before the backing image
func (t *CoreTexture) Destroy(device *CoreDevice) {
	if t == nil || device == nil || device.handle == nil {
		return
	}
	for index := range t.tiles {
		if t.tiles[index].memory != vk.NullDeviceMemory {
			vk.FreeMemory(device.handle, t.tiles[index].memory, nil)
			t.tiles[index].memory = vk.NullDeviceMemory
			t.tiles[index].loaded = false
		}
	}
	t.tiles = nil
	if t.memory != vk.NullDeviceMemory {
		vk.FreeMemory(device.handle, t.memory, nil)
		t.memory = vk.NullDeviceMemory
	}
	if t.image != vk.NullImage {
		vk.DestroyImage(device.handle, t.image, nil)
		t.image = vk.NullImage
	}
	t.layout = vk.ImageLayoutUndefined
}

//transitionMasks resolves the access masks and pipeline stages for a
//layout pair. Unknown pairs are an error so an invalid or redundant
//transition is never recorded.
func transitionMasks(old_layout, new_layout vk.ImageLayout) (src_access, dst_access vk.AccessFlags,
	src_stage, dst_stage vk.PipelineStageFlags, err error) {

	switch {
	case old_layout == vk.ImageLayoutUndefined && new_layout == vk.ImageLayoutTransferDstOptimal:
		return 0,
			vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil
	case old_layout == vk.ImageLayoutTransferDstOptimal && new_layout == vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.AccessFlags(vk.AccessTransferReadBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil
	case old_layout == vk.ImageLayoutTransferSrcOptimal && new_layout == vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit),
			vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil
	case old_layout == vk.ImageLayoutPresentSrc && new_layout == vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessMemoryReadBit),
			vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil
	case old_layout == vk.ImageLayoutTransferDstOptimal && new_layout == vk.ImageLayoutPresentSrc:
		return vk.AccessFlags(vk.AccessTransferWriteBit),
			vk.AccessFlags(vk.AccessMemoryReadBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			nil
	}
	return 0, 0, 0, 0, errors.Errorf("unsupported layout transition %d -> %d", old_layout, new_layout)
}

//recordTransition emits a full-subresource barrier between tracked layouts
func recordTransition(cmd vk.CommandBuffer, image vk.Image, old_layout, new_layout vk.ImageLayout) error {
	src_access, dst_access, src_stage, dst_stage, err := transitionMasks(old_layout, new_layout)
	if err != nil {
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       src_access,
		DstAccessMask:       dst_access,
		OldLayout:           old_layout,
		NewLayout:           new_layout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(cmd, src_stage, dst_stage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}
