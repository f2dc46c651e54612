package viewvk

import (
	vk "github.com/vulkan-go/vulkan"
)

//CoreQueue resolves the graphics and presentation queue families of a
//physical device against a surface. Both families must exist for the
//device to be usable; they may be the same family.
type CoreQueue struct {
	properties      []vk.QueueFamilyProperties
	graphics_family uint32
	present_family  uint32
	has_graphics    bool
	has_present     bool
}

func NewCoreQueue(gpu vk.PhysicalDevice, surface vk.Surface) *CoreQueue {
	var q CoreQueue
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return &q
	}
	q.properties = make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, q.properties)

	for index := uint32(0); index < count; index++ {
		family := q.properties[index]
		family.Deref()
		if !q.has_graphics && family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			q.graphics_family = index
			q.has_graphics = true
		}
		if !q.has_present && surface != vk.NullSurface {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(gpu, index, surface, &supported)
			if supported.B() {
				q.present_family = index
				q.has_present = true
			}
		}
		if q.has_graphics && q.has_present {
			break
		}
	}
	return &q
}

//IsDeviceSuitable is true only when both families were resolved
func (q *CoreQueue) IsDeviceSuitable() bool {
	return q.has_graphics && q.has_present
}

func (q *CoreQueue) GraphicsFamily() uint32 {
	return q.graphics_family
}

func (q *CoreQueue) PresentFamily() uint32 {
	return q.present_family
}

func (q *CoreQueue) HasSeparatePresentFamily() bool {
	return q.has_graphics && q.has_present && q.graphics_family != q.present_family
}

//GetCreateInfos builds one single-queue create info per distinct family
func (q *CoreQueue) GetCreateInfos() []vk.DeviceQueueCreateInfo {
	priority := []float32{1.0}
	infos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: q.graphics_family,
		QueueCount:       1,
		PQueuePriorities: priority,
	}}
	if q.HasSeparatePresentFamily() {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.present_family,
			QueueCount:       1,
			PQueuePriorities: priority,
		})
	}
	return infos
}
