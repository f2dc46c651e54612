package viewvk

import (
	"runtime"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//Upper bound on enumerated adapters; anything past this is ignored
const max_physical_devices = 32

//CoreDevice owns the vulkan instance, the selected physical device and the
//logical device with its graphics and present queues. It is created once
//during Initialize and destroyed only at Shutdown; a lost device tears
//down and reconstructs everything downstream of it.
type CoreDevice struct {
	instance vk.Instance
	gpu      vk.PhysicalDevice
	handle   vk.Device

	gpu_properties    vk.PhysicalDeviceProperties
	memory_properties vk.PhysicalDeviceMemoryProperties
	features          vk.PhysicalDeviceFeatures

	graphics_queue   vk.Queue
	present_queue    vk.Queue
	graphics_family  uint32
	present_family   uint32
	separate_present bool

	validation_layers []string
}

func NewCoreDevice() *CoreDevice {
	return &CoreDevice{}
}

//CreateInstance builds the vulkan instance with the window system's
//required extensions. Leaves every handle null on failure.
func (core *CoreDevice) CreateInstance(display *CoreDisplay, cfg *Config, app_name string) error {
	required := display.RequiredInstanceExtensions()
	inst_ext := NewBaseInstanceExtensions([]string{}, required)
	if ok, missing := inst_ext.HasRequired(); !ok {
		return errors.Errorf("missing required instance extensions %v", missing)
	}

	layers := []string{}
	if wanted := cfg.ValidationLayers(); len(wanted) > 0 {
		actual, err := ValidationLayers()
		if err == nil {
			layers, _ = checkExisting(actual, wanted)
		}
	}

	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" {
		flags = vk.InstanceCreateFlags(0x00000001) //VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(app_name),
			PEngineName:        "viewvk\x00",
		},
		EnabledExtensionCount:   uint32(len(inst_ext.GetExtensions())),
		PpEnabledExtensionNames: safeStrings(inst_ext.GetExtensions()),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
		Flags:                   flags,
	}, nil, &instance)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create instance")
	}

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return errors.Wrap(err, "init instance proc addrs")
	}

	core.instance = instance
	core.validation_layers = layers
	return nil
}

//PickPhysicalDevice selects the first enumerated adapter exposing both a
//graphics family and a family able to present to the surface. Ties are
//broken by enumeration order; there is no scoring heuristic.
func (core *CoreDevice) PickPhysicalDevice(surface vk.Surface) error {
	var gpu_count uint32
	ret := vk.EnumeratePhysicalDevices(core.instance, &gpu_count, nil)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "enumerate physical devices")
	}
	if gpu_count == 0 {
		return errors.New("no physical devices present")
	}
	if gpu_count > max_physical_devices {
		gpu_count = max_physical_devices
	}
	gpus := make([]vk.PhysicalDevice, gpu_count)
	ret = vk.EnumeratePhysicalDevices(core.instance, &gpu_count, gpus)
	if isError(ret) && ret != vk.Incomplete {
		return errors.Wrap(NewError(ret), "enumerate physical devices")
	}

	for index := uint32(0); index < gpu_count; index++ {
		queues := NewCoreQueue(gpus[index], surface)
		if queues.IsDeviceSuitable() {
			core.gpu = gpus[index]
			core.graphics_family = queues.GraphicsFamily()
			core.present_family = queues.PresentFamily()
			core.separate_present = queues.HasSeparatePresentFamily()

			vk.GetPhysicalDeviceProperties(core.gpu, &core.gpu_properties)
			core.gpu_properties.Deref()
			vk.GetPhysicalDeviceMemoryProperties(core.gpu, &core.memory_properties)
			core.memory_properties.Deref()
			vk.GetPhysicalDeviceFeatures(core.gpu, &core.features)
			core.features.Deref()
			return nil
		}
	}
	return errors.New("no device with graphics and presentation queue families")
}

//CreateLogicalDevice creates the device with one queue per resolved family
func (core *CoreDevice) CreateLogicalDevice(surface vk.Surface, cfg *Config) error {
	dev_ext := NewBaseDeviceExtensions([]string{"VK_KHR_portability_subset"},
		[]string{"VK_KHR_swapchain"}, core.gpu)
	if ok, missing := dev_ext.HasRequired(); !ok {
		return errors.Errorf("missing required device extensions %v", missing)
	}

	queues := NewCoreQueue(core.gpu, surface)
	queue_infos := queues.GetCreateInfos()
	extensions := dev_ext.GetExtensions()

	var device vk.Device
	ret := vk.CreateDevice(core.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queue_infos)),
		PQueueCreateInfos:       queue_infos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(core.validation_layers)),
		PpEnabledLayerNames:     safeStrings(core.validation_layers),
	}, nil, &device)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create logical device")
	}
	core.handle = device

	vk.GetDeviceQueue(core.handle, core.graphics_family, 0, &core.graphics_queue)
	if core.separate_present {
		vk.GetDeviceQueue(core.handle, core.present_family, 0, &core.present_queue)
	} else {
		core.present_queue = core.graphics_queue
	}
	return nil
}

//SupportsSparseResidency reports whether the selected adapter can back the
//tiled texture path
func (core *CoreDevice) SupportsSparseResidency() bool {
	if core.gpu == nil {
		return false
	}
	return core.features.SparseBinding.B() && core.features.SparseResidencyImage2D.B()
}

//WaitIdle blocks until the device drains; the result surfaces device loss
func (core *CoreDevice) WaitIdle() vk.Result {
	if core.handle == nil {
		return vk.Success
	}
	return vk.DeviceWaitIdle(core.handle)
}

//DestroyDevice releases the logical device only
func (core *CoreDevice) DestroyDevice() {
	if core.handle != nil {
		vk.DestroyDevice(core.handle, nil)
		core.handle = nil
		core.graphics_queue = nil
		core.present_queue = nil
	}
}

//ForgetDevice drops the logical device handle without calling into it.
//Used after device loss where destruction is no longer safe.
func (core *CoreDevice) ForgetDevice() {
	core.handle = nil
	core.graphics_queue = nil
	core.present_queue = nil
}

//DestroyInstance releases the instance; the surface must already be gone
func (core *CoreDevice) DestroyInstance() {
	if core.instance != nil {
		vk.DestroyInstance(core.instance, nil)
		core.instance = nil
		core.gpu = nil
	}
}
