package viewvk

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreBuffer is a host visible staging buffer holding pixel data on its way
//to a GPU image. The backing memory is sized exactly to the data.
type CoreBuffer struct {
	device vk.Device
	buffer vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
}

//NewStagingBuffer creates the buffer, allocates host visible coherent
//memory, and copies data in through a map/unmap cycle. No partial
//resource survives a failure.
func NewStagingBuffer(device *CoreDevice, data []byte) (*CoreBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("staging buffer needs data")
	}

	var buffer vk.Buffer
	ret := vk.CreateBuffer(device.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create staging buffer")
	}

	var mem_reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device.handle, buffer, &mem_reqs)
	mem_reqs.Deref()

	mem_type, ok := FindRequiredMemoryType(device.memory_properties, mem_reqs.MemoryTypeBits,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if !ok {
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, errors.New("no host visible memory type for staging buffer")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  mem_reqs.Size,
		MemoryTypeIndex: mem_type,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, errors.Wrap(NewError(ret), "allocate staging memory")
	}

	ret = vk.BindBufferMemory(device.handle, buffer, memory, 0)
	if isError(ret) {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, errors.Wrap(NewError(ret), "bind staging memory")
	}

	var p_data unsafe.Pointer
	ret = vk.MapMemory(device.handle, memory, 0, vk.DeviceSize(len(data)), 0, &p_data)
	if isError(ret) {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, errors.Wrap(NewError(ret), "map staging memory")
	}
	n := vk.Memcopy(p_data, data)
	vk.UnmapMemory(device.handle, memory)
	if n != len(data) {
		vk.FreeMemory(device.handle, memory, nil)
		vk.DestroyBuffer(device.handle, buffer, nil)
		return nil, errors.Errorf("staging copy truncated, %d != %d", n, len(data))
	}

	return &CoreBuffer{
		device: device.handle,
		buffer: buffer,
		memory: memory,
		size:   vk.DeviceSize(len(data)),
	}, nil
}

func (b *CoreBuffer) Destroy() {
	if b == nil || b.device == nil {
		return
	}
	vk.FreeMemory(b.device, b.memory, nil)
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.device = nil
	b.buffer = vk.NullBuffer
	b.memory = vk.NullDeviceMemory
}
