package viewvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type CorePool struct {
	pool vk.CommandPool
}

func NewCorePool(device vk.Device, family_index uint32) (*CorePool, error) {
	var core CorePool
	var cmd_pool vk.CommandPool

	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family_index,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &cmd_pool)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create command pool")
	}

	core.pool = cmd_pool
	return &core, nil
}

//AllocateBuffers returns count primary command buffers from the pool
func (c *CorePool) AllocateBuffers(device vk.Device, count int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate command buffers")
	}
	return buffers, nil
}

func (c *CorePool) FreeBuffers(device vk.Device, buffers []vk.CommandBuffer) {
	if len(buffers) > 0 {
		vk.FreeCommandBuffers(device, c.pool, uint32(len(buffers)), buffers)
	}
}

func (c *CorePool) Destroy(device vk.Device) {
	if c.pool != vk.NullCommandPool && device != nil {
		vk.DestroyCommandPool(device, c.pool, nil)
		c.pool = vk.NullCommandPool
	}
}

//OneTimeCommands allocates a throwaway primary buffer, records through fn,
//submits on the given queue and blocks until the GPU drains it. Uploads
//trade latency for simplicity since they are rare relative to frames.
func (c *CorePool) OneTimeCommands(device vk.Device, queue vk.Queue, fn func(vk.CommandBuffer)) error {
	buffers, err := c.AllocateBuffers(device, 1)
	if err != nil {
		return err
	}
	cmd := buffers[0]
	defer c.FreeBuffers(device, buffers)

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin one time command buffer")
	}

	fn(cmd)

	ret = vk.EndCommandBuffer(cmd)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "end one time command buffer")
	}

	ret = vk.QueueSubmit(queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}}, vk.NullFence)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "submit one time command buffer")
	}

	ret = vk.QueueWaitIdle(queue)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "wait for one time command buffer")
	}
	return nil
}
