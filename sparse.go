package viewvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//Largest tile accepted by the tiled upload entry points
const max_tile_pixels = 4096 * 4096

//tileGrid builds the row-major tile records for a sparse image, with edge
//tiles clamped to the image bounds
func tileGrid(width, height, tile_size int) (tiles []ImageTile, tiles_x, tiles_y int) {
	if width <= 0 || height <= 0 || tile_size <= 0 {
		return nil, 0, 0
	}
	tiles_x = (width + tile_size - 1) / tile_size
	tiles_y = (height + tile_size - 1) / tile_size
	tiles = make([]ImageTile, 0, tiles_x*tiles_y)
	for row := 0; row < tiles_y; row++ {
		for col := 0; col < tiles_x; col++ {
			tile := ImageTile{
				x: col * tile_size,
				y: row * tile_size,
			}
			tile.width = tile_size
			if tile.x+tile.width > width {
				tile.width = width - tile.x
			}
			tile.height = tile_size
			if tile.y+tile.height > height {
				tile.height = height - tile.y
			}
			tiles = append(tiles, tile)
		}
	}
	return tiles, tiles_x, tiles_y
}

//NewSparseTexture creates a sparse-resident image whose tiles are bound
//and uploaded individually on demand
func NewSparseTexture(device *CoreDevice, cfg *Config, width, height int, is_hdr bool) (*CoreTexture, error) {
	if !device.SupportsSparseResidency() {
		return nil, errors.New("device lacks sparse binding or residency")
	}
	format := textureFormat(is_hdr)

	var image vk.Image
	ret := vk.CreateImage(device.handle, &vk.ImageCreateInfo{
		SType: vk.StructureTypeImageCreateInfo,
		Flags: vk.ImageCreateFlags(vk.ImageCreateSparseBindingBit |
			vk.ImageCreateSparseResidencyBit),
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
			vk.ImageUsageTransferSrcBit | vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create sparse image")
	}

	//Tile edge comes from the reported granularity, falling back to the
	//configured default when the driver reports nothing usable
	tile_size := cfg.TileSize
	req_count := []uint32{0}
	vk.GetImageSparseMemoryRequirements(device.handle, image, req_count, nil)
	if req_count[0] > 0 {
		reqs := make([]vk.SparseImageMemoryRequirements, req_count[0])
		vk.GetImageSparseMemoryRequirements(device.handle, image, req_count, reqs)
		reqs[0].Deref()
		reqs[0].FormatProperties.Deref()
		reqs[0].FormatProperties.ImageGranularity.Deref()
		granularity_w := int(reqs[0].FormatProperties.ImageGranularity.Width)
		granularity_h := int(reqs[0].FormatProperties.ImageGranularity.Height)
		if granularity_w > 0 && granularity_h > 0 {
			tile_size = granularity_w
			if granularity_h > tile_size {
				tile_size = granularity_h
			}
		}
	}

	tiles, tiles_x, tiles_y := tileGrid(width, height, tile_size)
	if len(tiles) == 0 || len(tiles) > cfg.MaxTiles {
		vk.DestroyImage(device.handle, image, nil)
		return nil, errors.Errorf("sparse grid of %d tiles outside limits", len(tiles))
	}

	return &CoreTexture{
		image:     image,
		format:    format,
		layout:    vk.ImageLayoutUndefined,
		width:     width,
		height:    height,
		hdr:       is_hdr,
		sparse:    true,
		tile_size: tile_size,
		tiles_x:   tiles_x,
		tiles_y:   tiles_y,
		tiles:     tiles,
	}, nil
}

//LoadImageTile binds device memory for one tile of the sparse texture and
//uploads its pixels. A tile already loaded is never re-uploaded.
func (r *Renderer) LoadImageTile(tile_data []byte, tile_x, tile_y int) {
	if len(tile_data) == 0 {
		return
	}
	if r.device_lost || !r.vulkan_available || r.device == nil || r.device.handle == nil {
		return
	}
	texture := r.texture
	if texture == nil || !texture.sparse || texture.image == vk.NullImage {
		return
	}
	if tile_x < 0 || tile_x >= texture.tiles_x || tile_y < 0 || tile_y >= texture.tiles_y {
		return
	}
	tile := &texture.tiles[tile_y*texture.tiles_x+tile_x]
	if tile.loaded {
		return
	}

	tile_bytes := stagingSize(tile.width, tile.height, texture.hdr)
	if len(tile_data) < tile_bytes {
		r.logger.Warn("tile (%d,%d) rejected, %d bytes given, %d needed",
			tile_x, tile_y, len(tile_data), tile_bytes)
		return
	}
	if tile_bytes > r.cfg.MaxTileAllocation {
		r.logger.Warn("tile (%d,%d) rejected, allocation over cap", tile_x, tile_y)
		return
	}

	var mem_reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(r.device.handle, texture.image, &mem_reqs)
	mem_reqs.Deref()

	allocation := vk.DeviceSize(tile_bytes)
	if alignment := mem_reqs.Alignment; alignment > 0 {
		allocation = (allocation + alignment - 1) / alignment * alignment
	}

	mem_type, ok := FindRequiredMemoryType(r.device.memory_properties, mem_reqs.MemoryTypeBits,
		vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		r.logger.Error("no device local memory type for tile")
		return
	}

	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(r.device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  allocation,
		MemoryTypeIndex: mem_type,
	}, nil, &memory)
	if isError(ret) {
		r.logger.Error("tile memory allocation failed: %v", NewError(ret))
		return
	}

	ret = vk.QueueBindSparse(r.device.graphics_queue, 1, []vk.BindSparseInfo{{
		SType:          vk.StructureTypeBindSparseInfo,
		ImageBindCount: 1,
		PImageBinds: []vk.SparseImageMemoryBindInfo{{
			Image:     texture.image,
			BindCount: 1,
			PBinds: []vk.SparseImageMemoryBind{{
				Subresource: vk.ImageSubresource{
					AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				},
				Offset: vk.Offset3D{X: int32(tile.x), Y: int32(tile.y)},
				Extent: vk.Extent3D{
					Width:  uint32(tile.width),
					Height: uint32(tile.height),
					Depth:  1,
				},
				Memory: memory,
			}},
		}},
	}}, vk.NullFence)
	if !r.checkResult(ret) {
		vk.FreeMemory(r.device.handle, memory, nil)
		return
	}
	ret = vk.QueueWaitIdle(r.device.graphics_queue)
	if !r.checkResult(ret) {
		vk.FreeMemory(r.device.handle, memory, nil)
		return
	}

	staging, err := NewStagingBuffer(r.device, tile_data[:tile_bytes])
	if err != nil {
		r.logger.Error("tile staging failed: %v", err)
		vk.FreeMemory(r.device.handle, memory, nil)
		return
	}
	defer staging.Destroy()

	previous := texture.layout
	var record_err error
	err = r.pool.OneTimeCommands(r.device.handle, r.device.graphics_queue, func(cmd vk.CommandBuffer) {
		if previous != vk.ImageLayoutTransferDstOptimal {
			if record_err = recordTransition(cmd, texture.image, previous, vk.ImageLayoutTransferDstOptimal); record_err != nil {
				return
			}
		}
		vk.CmdCopyBufferToImage(cmd, staging.buffer, texture.image,
			vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
				ImageSubresource: vk.ImageSubresourceLayers{
					AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
					LayerCount: 1,
				},
				ImageOffset: vk.Offset3D{X: int32(tile.x), Y: int32(tile.y)},
				ImageExtent: vk.Extent3D{
					Width:  uint32(tile.width),
					Height: uint32(tile.height),
					Depth:  1,
				},
			}})
		record_err = recordTransition(cmd, texture.image,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal)
	})
	if record_err != nil || err != nil {
		if record_err != nil {
			r.logger.Error("tile transition rejected: %v", record_err)
		} else {
			r.logger.Error("tile upload failed: %v", err)
		}
		texture.layout = vk.ImageLayoutUndefined
		vk.FreeMemory(r.device.handle, memory, nil)
		return
	}

	texture.layout = vk.ImageLayoutTransferSrcOptimal
	tile.memory = memory
	tile.loaded = true
}

//UpdateImageTiled streams one sub-rectangle of a large image. Very large
//images on sparse-capable hardware use the tiled residency path; anything
//else copies the rectangle into a regular texture.
func (r *Renderer) UpdateImageTiled(pixels []byte, full_width, full_height,
	rect_x, rect_y, rect_width, rect_height int, is_hdr bool) {

	if len(pixels) == 0 || full_width <= 0 || full_height <= 0 {
		return
	}
	if rect_width <= 0 || rect_height <= 0 || rect_x < 0 || rect_y < 0 {
		return
	}
	if rect_x+rect_width > full_width || rect_y+rect_height > full_height {
		return
	}
	if full_width > r.cfg.MaxImageDim || full_height > r.cfg.MaxImageDim {
		return
	}
	if rect_width*rect_height > max_tile_pixels {
		return
	}
	needed := stagingSize(rect_width, rect_height, is_hdr)
	if len(pixels) < needed {
		return
	}
	if r.device_lost || !r.vulkan_available || r.device == nil || r.device.handle == nil {
		return
	}

	want_sparse := full_width >= r.cfg.SparseThreshold && full_height >= r.cfg.SparseThreshold &&
		r.device.SupportsSparseResidency()

	if !r.texture.Matches(full_width, full_height, is_hdr) || (r.texture != nil && r.texture.sparse != want_sparse) {
		if r.texture != nil {
			r.device.WaitIdle()
			r.texture.Destroy(r.device)
			r.texture = nil
		}
		var texture *CoreTexture
		var err error
		if want_sparse {
			texture, err = NewSparseTexture(r.device, r.cfg, full_width, full_height, is_hdr)
		} else {
			if full_width*full_height > r.cfg.MaxImagePixels {
				r.logger.Warn("tiled image rejected, pixel count over cap without sparse support")
				return
			}
			texture, err = NewCoreTexture(r.device, full_width, full_height, is_hdr)
		}
		if err != nil {
			r.logger.Error("tiled texture creation failed: %v", err)
			return
		}
		r.texture = texture
	}

	if r.texture.sparse {
		if r.texture.tile_size <= 0 ||
			rect_x%r.texture.tile_size != 0 || rect_y%r.texture.tile_size != 0 {
			r.logger.Warn("tiled upload rejected, rectangle not tile aligned")
			return
		}
		r.LoadImageTile(pixels[:needed], rect_x/r.texture.tile_size, rect_y/r.texture.tile_size)
		return
	}

	r.uploadPixels(r.texture, pixels[:needed], vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageOffset: vk.Offset3D{X: int32(rect_x), Y: int32(rect_y)},
		ImageExtent: vk.Extent3D{
			Width:  uint32(rect_width),
			Height: uint32(rect_height),
			Depth:  1,
		},
	})
}
