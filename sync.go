package viewvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreSync is the fixed ring of per-frame synchronization triples bounding
//how many frames may be in flight at once. Fences start signaled so the
//first frame never waits on a submission nobody made.
type CoreSync struct {
	image_acquired  []vk.Semaphore
	render_complete []vk.Semaphore
	in_flight       []vk.Fence
	frames          int
	current         int
}

func NewCoreSync(device vk.Device, frames int) (*CoreSync, error) {
	if frames <= 0 {
		frames = 2
	}
	core := &CoreSync{
		image_acquired:  make([]vk.Semaphore, frames),
		render_complete: make([]vk.Semaphore, frames),
		in_flight:       make([]vk.Fence, frames),
		frames:          frames,
	}

	for index := 0; index < frames; index++ {
		ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &core.image_acquired[index])
		if isError(ret) {
			core.Destroy(device)
			return nil, errors.Wrap(NewError(ret), "create acquire semaphore")
		}
		ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &core.render_complete[index])
		if isError(ret) {
			core.Destroy(device)
			return nil, errors.Wrap(NewError(ret), "create render semaphore")
		}
		ret = vk.CreateFence(device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &core.in_flight[index])
		if isError(ret) {
			core.Destroy(device)
			return nil, errors.Wrap(NewError(ret), "create in-flight fence")
		}
	}
	return core, nil
}

//Frame returns the current slot index
func (core *CoreSync) Frame() int {
	return core.current
}

//Wait blocks until the current slot's previous submission retired
func (core *CoreSync) Wait(device vk.Device) vk.Result {
	fences := []vk.Fence{core.in_flight[core.current]}
	return vk.WaitForFences(device, 1, fences, vk.True, vk.MaxUint64)
}

//ResetFence re-arms the current slot's fence immediately before submit
func (core *CoreSync) ResetFence(device vk.Device) {
	fences := []vk.Fence{core.in_flight[core.current]}
	vk.ResetFences(device, 1, fences)
}

func (core *CoreSync) AcquireSemaphore() vk.Semaphore {
	return core.image_acquired[core.current]
}

func (core *CoreSync) RenderSemaphore() vk.Semaphore {
	return core.render_complete[core.current]
}

func (core *CoreSync) Fence() vk.Fence {
	return core.in_flight[core.current]
}

//Advance moves to the next slot. Called only after a fully successful
//submit and present; a failed frame retries the same slot.
func (core *CoreSync) Advance() {
	core.current = nextFrameIndex(core.current, core.frames)
}

func (core *CoreSync) Destroy(device vk.Device) {
	if core == nil || device == nil {
		return
	}
	for index := 0; index < core.frames; index++ {
		if core.image_acquired[index] != vk.NullSemaphore {
			vk.DestroySemaphore(device, core.image_acquired[index], nil)
			core.image_acquired[index] = vk.NullSemaphore
		}
		if core.render_complete[index] != vk.NullSemaphore {
			vk.DestroySemaphore(device, core.render_complete[index], nil)
			core.render_complete[index] = vk.NullSemaphore
		}
		if core.in_flight[index] != vk.NullFence {
			vk.DestroyFence(device, core.in_flight[index], nil)
			core.in_flight[index] = vk.NullFence
		}
	}
}

func nextFrameIndex(current, frames int) int {
	if frames <= 0 {
		return 0
	}
	return (current + 1) % frames
}
